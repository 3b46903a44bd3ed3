package core_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/oceanfreight/blockvoyage/core"
)

var _ = Describe("PlacementArea", func() {
	var area *core.PlacementArea

	BeforeEach(func() {
		area = core.NewPlacementArea(10, 10, 0, 0, 0, 0)
	})

	makeSquare := func(id string) *core.VoxelBlock {
		return core.NewVoxelBlock(id, []core.Cell{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 1}}, 0, 0, core.BlockTypeUnknown)
	}

	Describe("placing a block", func() {
		It("occupies the requested cells and records placement order", func() {
			b := makeSquare("A")
			Expect(area.PlaceBlock(b, 8, 0)).To(BeTrue())
			Expect(area.PlacementOrder()).To(Equal([]string{"A"}))
			Expect(b.Position).NotTo(BeNil())
		})

		It("refuses a second block overlapping the first", func() {
			a := makeSquare("A")
			Expect(area.PlaceBlock(a, 8, 0)).To(BeTrue())
			b := makeSquare("B")
			Expect(area.CanPlace(b, 8, 0)).To(BeFalse())
		})
	})

	Describe("enhanced metrics", func() {
		It("reports full placement rate when every block placed", func() {
			a := makeSquare("A")
			area.PlaceBlock(a, 8, 0)
			m := area.EnhancedMetrics(1)
			Expect(m.PlacementRate).To(Equal(1.0))
			Expect(m.ClusterEfficiency).To(BeNumerically(">", 0))
		})
	})

	Describe("removing a block", func() {
		It("is idempotent for an id that was never placed", func() {
			Expect(area.RemoveBlock("ghost")).To(BeFalse())
		})
	})
})
