package morph_test

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/neuroanim/internal/morph"
)

func build(swc string) (*morph.Table, *morph.Forest, error) {
	tbl, err := morph.Parse(strings.NewReader(swc), morph.ParseOptions{Mode: morph.Strict})
	if err != nil {
		return nil, nil, err
	}
	f, err := morph.Build(tbl, morph.BuildOptions{})
	return tbl, f, err
}

func mustBuild(swc string) (*morph.Table, *morph.Forest) {
	tbl, f, err := build(swc)
	Expect(err).NotTo(HaveOccurred())
	return tbl, f
}

// randomTree generates a connected tree where every sample after the first
// picks an earlier sample as parent.
func randomTree(seed int64, n int) string {
	rng := rand.New(rand.NewSource(seed))
	var sb strings.Builder
	sb.WriteString("1 1 0 0 0 5 -1\n")
	for id := 2; id <= n; id++ {
		parent := 1 + rng.Intn(id-1)
		typ := 2 + rng.Intn(3)
		fmt.Fprintf(&sb, "%d %d %d %d %d 0.5 %d\n", id, typ, id, rng.Intn(50), rng.Intn(50), parent)
	}
	return sb.String()
}

var _ = Describe("Build", func() {
	It("splits a soma run from a dendrite point at the type change", func() {
		_, f := mustBuild("1 1 0 0 0 1 -1\n2 1 1 0 0 1 1\n3 3 2 0 0 0.5 2\n")

		Expect(f.Len()).To(Equal(2))
		soma := f.Section(0)
		dend := f.Section(1)
		Expect(soma.Name).To(Equal("soma_1"))
		Expect(soma.SampleIDs).To(Equal([]int{1, 2}))
		Expect(dend.Name).To(Equal("basal_dendrite_1"))
		Expect(dend.SampleIDs).To(Equal([]int{3}))
		Expect(dend.Parent).To(Equal(soma.Index))
		Expect(soma.Children).To(Equal([]int{dend.Index}))
	})

	It("spawns one section per child of a branch point", func() {
		swc := `1 1 0 0 0 5 -1
2 1 0 1 0 5 1
3 3 1 1 0 1 2
4 3 2 1 0 1 3
5 3 -1 1 0 1 2
6 3 -2 1 0 1 5
7 4 0 2 0 1 2
8 4 0 3 0 1 7
`
		_, f := mustBuild(swc)

		Expect(f.Len()).To(Equal(4))
		branch := f.Section(0)
		Expect(branch.SampleIDs).To(Equal([]int{1, 2}))
		Expect(branch.Children).To(HaveLen(3))

		seen := map[int]bool{}
		for _, c := range branch.Children {
			child := f.Section(c)
			Expect(child.Parent).To(Equal(branch.Index))
			for _, id := range child.SampleIDs {
				Expect(seen).NotTo(HaveKey(id))
				seen[id] = true
			}
		}
		Expect(seen).To(HaveLen(6))
		Expect(f.Section(branch.Children[0]).SampleIDs).To(Equal([]int{3, 4}))
		Expect(f.Section(branch.Children[2]).Name).To(Equal("apical_dendrite_1"))
	})

	It("keeps single-sample sections between consecutive branches", func() {
		swc := `1 3 0 0 0 1 -1
2 3 1 0 0 1 1
3 3 0 1 0 1 1
4 3 2 0 0 1 2
5 3 1 1 0 1 2
`
		tbl, f := mustBuild(swc)

		Expect(f.Len()).To(Equal(5))
		Expect(f.Section(0).SampleIDs).To(Equal([]int{1}))
		Expect(f.Section(1).SampleIDs).To(Equal([]int{2}))
		Expect(f.Section(1).Children).To(HaveLen(2))

		g, err := morph.Derive(tbl, f.Section(1))
		Expect(err).NotTo(HaveOccurred())
		Expect(g.Length).To(BeZero())
	})

	It("numbers sections per type in pre-order across the whole build", func() {
		swc := `1 1 0 0 0 5 -1
2 3 1 0 0 1 1
3 3 2 0 0 1 2
4 3 3 1 0 1 3
5 3 3 -1 0 1 3
6 2 -1 0 0 1 1
`
		_, f := mustBuild(swc)

		names := make([]string, 0, f.Len())
		for _, s := range f.Sections() {
			names = append(names, s.Name)
		}
		Expect(names).To(Equal([]string{
			"soma_1",
			"basal_dendrite_1",
			"basal_dendrite_2",
			"basal_dendrite_3",
			"axon_1",
		}))
	})

	It("partitions every sample into exactly one section", func() {
		for seed := int64(1); seed <= 5; seed++ {
			tbl, f := mustBuild(randomTree(seed, 200))

			counts := map[int]int{}
			for _, s := range f.Sections() {
				for _, id := range s.SampleIDs {
					counts[id]++
				}
			}
			Expect(counts).To(HaveLen(tbl.Len()))
			for id, n := range counts {
				Expect(n).To(Equal(1), "sample %d", id)
			}
		}
	})

	It("has zero length only for single-sample sections", func() {
		tbl, f := mustBuild(randomTree(42, 150))

		for _, s := range f.Sections() {
			g, err := morph.Derive(tbl, s)
			Expect(err).NotTo(HaveOccurred())
			if len(s.SampleIDs) == 1 {
				Expect(g.Length).To(BeZero())
			} else {
				Expect(g.Length).To(BeNumerically(">", 0))
			}
		}
	})

	It("parents each section to the owner of its first sample's parent", func() {
		tbl, f := mustBuild(randomTree(7, 120))

		for _, s := range f.Sections() {
			first, _ := tbl.Get(s.First())
			if first.IsRoot() {
				Expect(s.IsRoot()).To(BeTrue())
				continue
			}
			owner, ok := f.FindOwningSection(first.Parent)
			Expect(ok).To(BeTrue())
			Expect(owner.Index).To(Equal(s.Parent))
			Expect(owner.Last()).To(Equal(first.Parent))
		}
	})

	It("treats samples with undefined parents as roots", func() {
		tbl, f := mustBuild("1 1 0 0 0 1 -1\n5 2 3 0 0 1 4\n6 2 4 0 0 1 5\n")

		Expect(tbl.Unresolved()).To(Equal([]int{5}))
		Expect(f.Roots()).To(HaveLen(2))
		Expect(f.Section(1).SampleIDs).To(Equal([]int{5, 6}))
		Expect(f.Diagnostics()).To(HaveLen(1))
		Expect(f.Diagnostics()[0].SampleID).To(Equal(5))
	})

	It("walks sections depth first with depth", func() {
		_, f := mustBuild("1 1 0 0 0 1 -1\n2 3 1 0 0 1 1\n3 3 2 0 0 1 2\n4 3 2 1 0 1 2\n")

		var visited []string
		f.Walk(func(s *morph.Section, depth int) bool {
			visited = append(visited, fmt.Sprintf("%s@%d", s.Name, depth))
			return true
		})
		Expect(visited).To(Equal([]string{
			"soma_1@0",
			"basal_dendrite_1@1",
			"basal_dendrite_2@2",
			"basal_dendrite_3@2",
		}))
	})

	Context("with a cyclic parent chain", func() {
		It("fails with a TopologyError naming the cycle", func() {
			_, _, err := build("1 1 0 0 0 1 -1\n2 3 1 0 0 1 3\n3 3 2 0 0 1 2\n4 3 3 0 0 1 3\n")

			var te *morph.TopologyError
			Expect(errors.As(err, &te)).To(BeTrue())
			Expect(errors.Is(err, morph.ErrCycle)).To(BeTrue())
			Expect(te.SampleID).To(Equal(2))
			Expect(te.Cycle).To(ConsistOf(2, 3))
		})

		It("detects a sample that is its own parent", func() {
			_, _, err := build("1 1 0 0 0 1 -1\n2 3 1 0 0 1 2\n")

			var te *morph.TopologyError
			Expect(errors.As(err, &te)).To(BeTrue())
			Expect(te.Cycle).To(Equal([]int{2}))
		})
	})
})

var _ = Describe("FindOwningSection", func() {
	It("resolves every sample and rejects unknown ids", func() {
		tbl, f := mustBuild(randomTree(3, 60))

		for _, s := range tbl.Samples() {
			sec, ok := f.FindOwningSection(s.ID)
			Expect(ok).To(BeTrue())
			Expect(sec.SampleIDs).To(ContainElement(s.ID))
		}
		_, ok := f.FindOwningSection(10_000)
		Expect(ok).To(BeFalse())
	})
})
