package termmatrix

import (
	"math"
	"testing"
)

const eps = 1e-12

func buildFixture() *Matrix {
	docs := [][]string{
		{"great", "movie", "great"},
		{"awful", "movie"},
		{"movie"},
	}
	return Build(docs, []string{"great", "movie", "awful"})
}

func TestBuild(t *testing.T) {
	m := buildFixture()

	if m.Rows() != 3 || m.Cols() != 3 {
		t.Fatalf("dims = %dx%d, want 3x3", m.Rows(), m.Cols())
	}

	want := [][]float64{
		{2, 1, 0},
		{0, 1, 1},
		{0, 1, 0},
	}
	for i := range want {
		for j := range want[i] {
			if got := m.At(i, j); got != want[i][j] {
				t.Errorf("At(%d,%d) = %v, want %v", i, j, got, want[i][j])
			}
		}
	}
}

func TestBuildIgnoresUnknownTerms(t *testing.T) {
	m := Build([][]string{{"known", "unknown"}}, []string{"known"})
	if m.Cols() != 1 {
		t.Fatalf("Cols() = %d, want 1", m.Cols())
	}
	if m.At(0, 0) != 1 {
		t.Errorf("At(0,0) = %v, want 1", m.At(0, 0))
	}
}

func TestTFIDF(t *testing.T) {
	m := buildFixture().TFIDF()

	// "movie" appears in all 3 documents: idf = ln(3/3) = 0
	for i := 0; i < 3; i++ {
		if got := m.At(i, 1); got != 0 {
			t.Errorf("ubiquitous term weight at row %d = %v, want 0", i, got)
		}
	}

	// "great": tf = 2/3 in row 0, idf = ln(3/1)
	wantGreat := (2.0 / 3.0) * math.Log(3)
	if got := m.At(0, 0); math.Abs(got-wantGreat) > eps {
		t.Errorf("At(0,0) = %v, want %v", got, wantGreat)
	}

	// "awful": tf = 1/2 in row 1, idf = ln(3/1)
	wantAwful := 0.5 * math.Log(3)
	if got := m.At(1, 2); math.Abs(got-wantAwful) > eps {
		t.Errorf("At(1,2) = %v, want %v", got, wantAwful)
	}
}

func TestRowSubset(t *testing.T) {
	m := buildFixture()
	sub := m.RowSubset([]int{2, 0})

	if sub.Rows() != 2 {
		t.Fatalf("Rows() = %d, want 2", sub.Rows())
	}
	if sub.At(0, 1) != 1 {
		t.Errorf("subset row 0 should be original row 2")
	}
	if sub.At(1, 0) != 2 {
		t.Errorf("subset row 1 should be original row 0")
	}
}

func TestConformShape(t *testing.T) {
	m := buildFixture()
	target := []string{"awful", "missing", "great"}
	c := m.Conform(target)

	if c.Cols() != len(target) {
		t.Fatalf("Cols() = %d, want %d", c.Cols(), len(target))
	}
	if c.Rows() != m.Rows() {
		t.Fatalf("Rows() = %d, want %d", c.Rows(), m.Rows())
	}
	terms := c.Terms()
	for i, want := range target {
		if terms[i] != want {
			t.Errorf("Terms()[%d] = %q, want %q", i, terms[i], want)
		}
	}

	// values relocate to the target's column order
	if c.At(0, 2) != 2 {
		t.Errorf("At(0,2) = %v, want 2 (great moved to column 2)", c.At(0, 2))
	}
	if c.At(1, 0) != 1 {
		t.Errorf("At(1,0) = %v, want 1 (awful moved to column 0)", c.At(1, 0))
	}

	// the injected column is all zeros
	for i := 0; i < c.Rows(); i++ {
		if c.At(i, 1) != 0 {
			t.Errorf("At(%d,1) = %v, want 0 for missing term", i, c.At(i, 1))
		}
	}

	// "movie" was dropped entirely
	if _, ok := c.index["movie"]; ok {
		t.Error("dropped term still present in index")
	}
}

func TestConformIdempotent(t *testing.T) {
	m := buildFixture()
	target := []string{"movie", "great", "nonexistent"}

	once := m.Conform(target)
	twice := once.Conform(target)

	if once.Rows() != twice.Rows() || once.Cols() != twice.Cols() {
		t.Fatalf("dims changed on second conform: %dx%d vs %dx%d",
			once.Rows(), once.Cols(), twice.Rows(), twice.Cols())
	}
	for i := 0; i < once.Rows(); i++ {
		for j := 0; j < once.Cols(); j++ {
			if once.At(i, j) != twice.At(i, j) {
				t.Errorf("At(%d,%d) changed on second conform: %v vs %v",
					i, j, once.At(i, j), twice.At(i, j))
			}
		}
	}
}

func TestColumnMoments(t *testing.T) {
	m := buildFixture()

	means, variances := m.ColumnMoments([]int{0, 1, 2})

	// column 0 ("great"): values 2,0,0 -> mean 2/3, sample var 4/3
	if math.Abs(means[0]-2.0/3.0) > eps {
		t.Errorf("mean[0] = %v, want %v", means[0], 2.0/3.0)
	}
	if math.Abs(variances[0]-4.0/3.0) > eps {
		t.Errorf("var[0] = %v, want %v", variances[0], 4.0/3.0)
	}

	// column 1 ("movie"): constant 1 -> variance exactly 0
	if variances[1] != 0 {
		t.Errorf("var[1] = %v, want exactly 0 for constant column", variances[1])
	}

	// subset of rows where "awful" never appears: mean and variance exactly 0
	means, variances = m.ColumnMoments([]int{0, 2})
	if means[2] != 0 || variances[2] != 0 {
		t.Errorf("absent term moments = (%v, %v), want (0, 0)", means[2], variances[2])
	}
}

func TestColumnMomentsEmptyAndSingleRow(t *testing.T) {
	m := buildFixture()

	means, variances := m.ColumnMoments(nil)
	for j := range means {
		if means[j] != 0 || variances[j] != 0 {
			t.Errorf("moments over no rows should be zero, got (%v, %v)", means[j], variances[j])
		}
	}

	_, variances = m.ColumnMoments([]int{0})
	for j := range variances {
		if variances[j] != 0 {
			t.Errorf("single-row variance[%d] = %v, want 0", j, variances[j])
		}
	}
}
