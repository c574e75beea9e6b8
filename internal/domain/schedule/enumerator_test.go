package schedule_test

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"testing"

	"github.com/okian/schedluck/internal/domain/model"
	"github.com/okian/schedluck/internal/domain/schedule"
	. "github.com/smartystreets/goconvey/convey"
)

func teams(n int) []model.TeamID {
	out := make([]model.TeamID, n)
	for i := range out {
		out[i] = model.TeamID(fmt.Sprintf("t%d", i))
	}
	return out
}

func key(s schedule.Schedule) string {
	parts := make([]string, len(s))
	for i, t := range s {
		parts[i] = string(t)
	}
	return strings.Join(parts, ",")
}

func collect(seq func(func(schedule.Schedule) bool)) []schedule.Schedule {
	var out []schedule.Schedule
	for s := range seq {
		out = append(out, slices.Clone(s))
	}
	return out
}

func TestFactorial(t *testing.T) {
	Convey("Factorial covers the supported range", t, func() {
		f, err := schedule.Factorial(0)
		So(err, ShouldBeNil)
		So(f, ShouldEqual, 1)

		f, err = schedule.Factorial(3)
		So(err, ShouldBeNil)
		So(f, ShouldEqual, 6)

		f, err = schedule.Factorial(schedule.MaxOpponents)
		So(err, ShouldBeNil)
		So(f, ShouldEqual, uint64(2432902008176640000))

		_, err = schedule.Factorial(schedule.MaxOpponents + 1)
		So(errors.Is(err, schedule.ErrTooManyOpponents), ShouldBeTrue)
	})
}

func TestEnumeratorAll(t *testing.T) {
	Convey("Given a focal team among four teams", t, func() {
		all := []model.TeamID{"A", "B", "C", "D"}
		e, err := schedule.New("A", all)
		So(err, ShouldBeNil)

		Convey("When enumerating every ordering", func() {
			got := collect(e.All())

			Convey("Then exactly 3! distinct orderings appear", func() {
				So(e.Cardinality(), ShouldEqual, 6)
				So(len(got), ShouldEqual, 6)
				set := map[string]struct{}{}
				for _, s := range got {
					set[key(s)] = struct{}{}
				}
				So(len(set), ShouldEqual, 6)
			})

			Convey("And each is a permutation of the opponents", func() {
				for _, s := range got {
					sorted := slices.Clone(s)
					slices.Sort(sorted)
					So(sorted, ShouldResemble, schedule.Schedule{"B", "C", "D"})
				}
			})

			Convey("And the order is lexicographic over the input order", func() {
				So(key(got[0]), ShouldEqual, "B,C,D")
				So(key(got[1]), ShouldEqual, "B,D,C")
				So(key(got[2]), ShouldEqual, "C,B,D")
				So(key(got[5]), ShouldEqual, "D,C,B")
			})

			Convey("And the sequence restarts identically", func() {
				So(collect(e.All()), ShouldResemble, got)
			})
		})

		Convey("When the input order changes", func() {
			e2, err := schedule.New("A", []model.TeamID{"D", "A", "C", "B"})
			So(err, ShouldBeNil)
			got := collect(e2.All())

			Convey("Then rank 0 follows the new order", func() {
				So(key(got[0]), ShouldEqual, "D,C,B")
			})
		})
	})

	Convey("Given a set of k opponents, k! orderings are produced", t, func() {
		for k := 1; k <= 6; k++ {
			e, err := schedule.New("t0", teams(k+1))
			So(err, ShouldBeNil)
			want, _ := schedule.Factorial(k)
			set := map[string]struct{}{}
			for s := range e.All() {
				set[key(s)] = struct{}{}
			}
			So(uint64(len(set)), ShouldEqual, want)
		}
	})

	Convey("Given invalid team lists", t, func() {
		_, err := schedule.New("Z", []model.TeamID{"A", "B"})
		So(errors.Is(err, schedule.ErrUnknownFocal), ShouldBeTrue)

		_, err = schedule.New("A", []model.TeamID{"A", "B", "B"})
		So(errors.Is(err, schedule.ErrDuplicateTeam), ShouldBeTrue)

		_, err = schedule.New("t0", teams(schedule.MaxOpponents+2))
		So(errors.Is(err, schedule.ErrTooManyOpponents), ShouldBeTrue)
	})
}

func TestEnumeratorRanks(t *testing.T) {
	Convey("Given a five-opponent enumerator", t, func() {
		e, err := schedule.New("t0", teams(6))
		So(err, ShouldBeNil)
		all := collect(e.All())

		Convey("Then Unrank matches the sequential walk and Rank inverts it", func() {
			for i, s := range all {
				u, err := e.Unrank(uint64(i))
				So(err, ShouldBeNil)
				So(u, ShouldResemble, s)

				r, err := e.Rank(s)
				So(err, ShouldBeNil)
				So(r, ShouldEqual, uint64(i))
			}
		})

		Convey("Then ranges over a partition concatenate to the full walk", func() {
			var joined []schedule.Schedule
			for _, r := range schedule.Partition(e.Cardinality(), 7) {
				joined = append(joined, collect(e.Range(r.Start, r.Count))...)
			}
			So(joined, ShouldResemble, all)
		})

		Convey("Then a range is clipped to the cardinality", func() {
			tail := collect(e.Range(118, 10))
			So(len(tail), ShouldEqual, 2)
			So(len(collect(e.Range(500, 1))), ShouldEqual, 0)
		})

		Convey("Then bad input is rejected", func() {
			_, err := e.Unrank(120)
			So(errors.Is(err, schedule.ErrRankOutOfRange), ShouldBeTrue)

			_, err = e.Rank(schedule.Schedule{"t1", "t1", "t2", "t3", "t4"})
			So(errors.Is(err, schedule.ErrNotASchedule), ShouldBeTrue)

			_, err = e.Rank(schedule.Schedule{"t1"})
			So(errors.Is(err, schedule.ErrNotASchedule), ShouldBeTrue)
		})

		Convey("Then an early break stops the sequence", func() {
			n := 0
			for range e.All() {
				n++
				if n == 3 {
					break
				}
			}
			So(n, ShouldEqual, 3)
		})
	})
}

func TestPartition(t *testing.T) {
	Convey("Partition covers [0,total) with disjoint contiguous ranges", t, func() {
		parts := schedule.Partition(10, 4)
		So(parts, ShouldResemble, []schedule.Range{
			{Start: 0, Count: 4},
			{Start: 4, Count: 4},
			{Start: 8, Count: 2},
		})
		So(parts[2].End(), ShouldEqual, 10)

		So(schedule.Partition(0, 4), ShouldBeNil)
		So(schedule.Partition(5, 0), ShouldResemble, []schedule.Range{{Start: 0, Count: 5}})
	})
}
