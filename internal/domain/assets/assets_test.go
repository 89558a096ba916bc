package assets_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/okian/isles/internal/domain/assets"
	. "github.com/smartystreets/goconvey/convey"
)

func TestRegistry(t *testing.T) {
	Convey("Given a registry of seasonal models", t, func() {
		reg, err := assets.NewRegistry(
			assets.Asset{ID: "tree-naked", Category: "tree", Variant: "winter"},
			assets.Asset{ID: "tree-fancy", Category: "tree", Variant: "summer"},
			assets.Asset{ID: "grass", Category: "vegetation", Variant: "all"},
			assets.Asset{ID: "grass-winter", Category: "vegetation", Variant: "winter"},
			assets.Asset{ID: "birds", Category: "birds"},
		)
		So(err, ShouldBeNil)
		So(reg.Len(), ShouldEqual, 5)

		Convey("When looking up an exact variant", func() {
			list, err := reg.Lookup("vegetation", "winter")
			So(err, ShouldBeNil)
			So(list, ShouldHaveLength, 1)
			So(list[0].ID, ShouldEqual, "grass-winter")
		})

		Convey("When the variant is missing it falls back to all", func() {
			list, err := reg.Lookup("vegetation", "autumn")
			So(err, ShouldBeNil)
			So(list[0].ID, ShouldEqual, "grass")

			birds, err := reg.Lookup("birds", "spring")
			So(err, ShouldBeNil)
			So(birds[0].Variant, ShouldEqual, assets.VariantAll)
		})

		Convey("When nothing matches", func() {
			_, err := reg.Lookup("tree", "autumn")
			So(errors.Is(err, assets.ErrUnknownAsset), ShouldBeTrue)
		})

		Convey("When adding a duplicate id", func() {
			err := reg.Add(assets.Asset{ID: "grass", Category: "vegetation"})
			So(errors.Is(err, assets.ErrDuplicateAsset), ShouldBeTrue)
		})

		Convey("Then ids are sorted", func() {
			So(reg.IDs(), ShouldResemble, []string{"birds", "grass", "grass-winter", "tree-fancy", "tree-naked"})
			a, ok := reg.Get("tree-fancy")
			So(ok, ShouldBeTrue)
			So(a.Variant, ShouldEqual, "summer")
		})
	})
}

func TestSeasonOf(t *testing.T) {
	Convey("Given months of the year", t, func() {
		So(assets.SeasonOf(1), ShouldEqual, "winter")
		So(assets.SeasonOf(12), ShouldEqual, "winter")
		So(assets.SeasonOf(4), ShouldEqual, "spring")
		So(assets.SeasonOf(7), ShouldEqual, "summer")
		So(assets.SeasonOf(10), ShouldEqual, "autumn")
		So(assets.SeasonOf(13), ShouldEqual, assets.VariantAll)
	})
}

func TestBarrier(t *testing.T) {
	Convey("Given a barrier over two assets", t, func() {
		b := assets.NewBarrier("island", "tree")
		calls := 0
		b.OnReady(func() { calls++ })

		Convey("When one asset reports twice", func() {
			released, err := b.Done("island")
			So(err, ShouldBeNil)
			So(released, ShouldBeFalse)
			released, err = b.Done("island")
			So(err, ShouldBeNil)
			So(released, ShouldBeFalse)

			Convey("Then the barrier is still closed", func() {
				loaded, total := b.Progress()
				So(loaded, ShouldEqual, 1)
				So(total, ShouldEqual, 2)
				So(b.IsReady(), ShouldBeFalse)
				So(calls, ShouldEqual, 0)
			})
		})

		Convey("When every asset reports", func() {
			_, _ = b.Done("tree")
			released, err := b.Done("island")

			Convey("Then it releases exactly once", func() {
				So(err, ShouldBeNil)
				So(released, ShouldBeTrue)
				So(calls, ShouldEqual, 1)
				_, ok := <-b.Ready()
				So(ok, ShouldBeFalse)
				released, _ = b.Done("tree")
				So(released, ShouldBeFalse)
				So(calls, ShouldEqual, 1)
			})

			Convey("Then late callbacks run immediately and registration is closed", func() {
				late := false
				b.OnReady(func() { late = true })
				So(late, ShouldBeTrue)
				So(errors.Is(b.Register("cloud"), assets.ErrBarrierClosed), ShouldBeTrue)
			})
		})

		Convey("When an unknown asset reports", func() {
			_, err := b.Done("dragon")
			So(errors.Is(err, assets.ErrUnknownAsset), ShouldBeTrue)
		})
	})

	Convey("Given an empty barrier", t, func() {
		b := assets.NewBarrier()
		So(b.IsReady(), ShouldBeFalse)
		So(b.Release(), ShouldBeTrue)
		So(b.Release(), ShouldBeFalse)
		So(b.IsReady(), ShouldBeTrue)
	})

	Convey("Given concurrent reports", t, func() {
		ids := []string{"a", "b", "c", "d", "e", "f", "g", "h"}
		b := assets.NewBarrier(ids...)
		var mu sync.Mutex
		releases := 0

		var wg sync.WaitGroup
		for i := 0; i < 4; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for _, id := range ids {
					if ok, _ := b.Done(id); ok {
						mu.Lock()
						releases++
						mu.Unlock()
					}
				}
			}()
		}
		wg.Wait()

		So(releases, ShouldEqual, 1)
		So(b.IsReady(), ShouldBeTrue)
	})
}
