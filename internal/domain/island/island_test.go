package island_test

import (
	"testing"

	"github.com/okian/isles/internal/domain/island"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMapValueBetween(t *testing.T) {
	Convey("Given the linear range mapping", t, func() {
		So(island.MapValueBetween(0, 0, 20000, 6, 10), ShouldEqual, 6)
		So(island.MapValueBetween(20000, 0, 20000, 6, 10), ShouldEqual, 10)
		So(island.MapValueBetween(10000, 0, 20000, 1, 0.5), ShouldEqual, 0.75)
		So(island.MapValueBetween(5, 3, 3, 1, 2), ShouldEqual, 1)
	})
}

func TestShaper_Shape(t *testing.T) {
	Convey("Given a default shaper", t, func() {
		shaper := island.NewShaper()

		Convey("When shaping a large month", func() {
			shape := shaper.Shape(3, 12500)

			Convey("Then layer count and size follow the magnitude", func() {
				So(shape.Layers, ShouldEqual, 13)
				So(shape.Size, ShouldAlmostEqual, 0.08, 1e-9)
				So(shape.ScatterRadius, ShouldAlmostEqual, (1-0.5*12500.0/20000)*6, 1e-9)
				So(shape.Thickness, ShouldEqual, 0.025)
				So(shape.Animals, ShouldEqual, 1)
			})

			Convey("Then model counts stay within range", func() {
				So(shape.Trees, ShouldBeBetweenOrEqual, 2, 6)
				So(shape.Vegetation, ShouldBeBetweenOrEqual, 2, 6)
				So(shape.ShapeIndex, ShouldBeBetweenOrEqual, 0, 5)
			})

			Convey("Then shaping is deterministic", func() {
				So(shaper.Shape(3, 12500), ShouldResemble, shape)
				So(island.NewShaper().Shape(3, 12500), ShouldResemble, shape)
			})
		})

		Convey("When the magnitude is out of range", func() {
			empty := shaper.Shape(0, -10)
			huge := shaper.Shape(0, 50000)

			Convey("Then size saturates while layers keep counting", func() {
				So(empty.Layers, ShouldEqual, 0)
				So(empty.Size, ShouldAlmostEqual, 0.06, 1e-9)
				So(huge.Size, ShouldAlmostEqual, 0.10, 1e-9)
				So(huge.Layers, ShouldEqual, 50)
				So(huge.ScatterRadius, ShouldAlmostEqual, 3, 1e-9)
			})
		})
	})

	Convey("Given a shaper with custom options", t, func() {
		shaper := island.NewShaper(island.WithLayerUnit(500), island.WithMaxMagnitude(1000), island.WithShapeCount(1), island.WithSeed(7))
		shape := shaper.Shape(1, 1000)

		So(shape.Layers, ShouldEqual, 2)
		So(shape.Size, ShouldAlmostEqual, 0.10, 1e-9)
		So(shape.ShapeIndex, ShouldEqual, 0)
	})
}

func TestShaper_Populate(t *testing.T) {
	Convey("Given a shape and a picker", t, func() {
		shaper := island.NewShaper()
		shape := shaper.Shape(2, 4000)
		pick := func(category string) []string {
			switch category {
			case island.CategoryTree:
				return []string{"a", "b"}
			case island.CategoryAnimal:
				return []string{"birds"}
			}
			return nil
		}

		Convey("When populating", func() {
			models := shaper.Populate(2, shape, pick)

			Convey("Then counts follow the shape and empty categories are skipped", func() {
				So(models, ShouldHaveLength, shape.Trees+shape.Animals)
				for _, m := range models {
					So(m.Category, ShouldNotEqual, island.CategoryVegetation)
				}
				So(shaper.Populate(2, shape, pick), ShouldResemble, models)
			})
		})

		Convey("When no picker is given", func() {
			So(shaper.Populate(2, shape, nil), ShouldBeNil)
		})
	})
}
