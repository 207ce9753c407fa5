package derive

import (
	"encoding/json"
	"math"
	"reflect"
	"testing"

	"github.com/KaramelBytes/dashcsv/internal/figure"
	"github.com/KaramelBytes/dashcsv/internal/table"
)

func mustTable(t *testing.T, cols ...table.Column) *table.Table {
	t.Helper()
	tb, err := table.New("test.csv", cols...)
	if err != nil {
		t.Fatalf("table.New: %v", err)
	}
	return tb
}

func TestNoDataConditions(t *testing.T) {
	full := mustTable(t, table.NumericColumn("n", 1, 2))
	empty := mustTable(t, table.Column{Name: "n", Kind: table.Numeric, Numbers: []float64{}})
	cases := []struct {
		name string
		t    *table.Table
		col  string
	}{
		{"nil table", nil, "n"},
		{"zero rows", empty, "n"},
		{"empty selection", full, ""},
		{"unknown column", full, "missing"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if fig := PrimaryChart(tc.t, tc.col); !fig.IsZero() {
				t.Fatalf("primary chart not empty: %+v", fig)
			}
			if fig := PieChart(tc.t, tc.col); !fig.IsZero() {
				t.Fatalf("pie chart not empty: %+v", fig)
			}
			if s := Statistics(tc.t, tc.col); s.Message != NoData || len(s.Items) != 0 {
				t.Fatalf("statistics = %+v", s)
			}
			b, err := json.Marshal(PrimaryChart(tc.t, tc.col))
			if err != nil {
				t.Fatal(err)
			}
			if string(b) != "{}" {
				t.Fatalf("empty figure json = %s", b)
			}
		})
	}
}

func TestNumericStatistics(t *testing.T) {
	tb := mustTable(t, table.NumericColumn("x", 1, 2, 3, 4, 5))
	s := Statistics(tb, "x")
	want := []Item{
		{"Count", "5"},
		{"Mean", "3.00"},
		{"Median", "3.00"},
		{"Std", "1.58"},
	}
	if !reflect.DeepEqual(s.Items, want) {
		t.Fatalf("items = %+v, want %+v", s.Items, want)
	}
	if s.Kind != "numeric" {
		t.Fatalf("kind = %q", s.Kind)
	}
}

func TestNumericStatisticsSkipsMissing(t *testing.T) {
	tb := mustTable(t, table.NumericColumn("x", 4, math.NaN(), 1, 2))
	s := Statistics(tb, "x")
	if s.Items[0].Value != "3" || s.Items[2].Value != "2.00" {
		t.Fatalf("items = %+v", s.Items)
	}
	one := mustTable(t, table.NumericColumn("x", 7))
	if got := Statistics(one, "x").Items[3].Value; got != "nan" {
		t.Fatalf("std of a single value = %q, want nan", got)
	}
}

func TestNumericCharts(t *testing.T) {
	tb := mustTable(t, table.NumericColumn("x", 1, 2, math.NaN(), 3))
	fig := PrimaryChart(tb, "x")
	if len(fig.Data) != 1 || fig.Data[0].Kind != figure.Histogram {
		t.Fatalf("expected histogram, got %+v", fig.Data)
	}
	if !reflect.DeepEqual(fig.Data[0].Values, []float64{1, 2, 3}) {
		t.Fatalf("histogram samples = %v", fig.Data[0].Values)
	}
	if fig.Data[0].Color != figure.Accent {
		t.Fatalf("color = %q", fig.Data[0].Color)
	}
	l := fig.Layout
	if l.Title.Text != "Distribution of x" || *l.Title.X != 0.5 || l.Title.Font.Size != 24 {
		t.Fatalf("title = %+v", l.Title)
	}
	if l.XAxis.Title.Text != AxisValues || l.YAxis.Title.Text != AxisTotal || l.Template != "plotly_white" {
		t.Fatalf("layout = %+v", l)
	}

	pie := PieChart(tb, "x")
	if pie.HasData() || pie.Layout == nil || pie.Layout.Title.Text != PieNumericTitle {
		t.Fatalf("expected numeric pie placeholder, got %+v", pie)
	}
	if *pie.Layout.Title.X != 0.5 {
		t.Fatalf("pie title not centred")
	}
}

func TestCategoricalWithoutValues(t *testing.T) {
	tb := mustTable(t, table.CategoricalColumn("category", "A", "B", "A"))

	bar := PrimaryChart(tb, "category")
	if bar.HasData() || bar.Layout == nil || bar.Layout.Title.Text != NoCategoryDataTitle {
		t.Fatalf("expected placeholder, got %+v", bar)
	}

	pie := PieChart(tb, "category")
	if len(pie.Data) != 1 {
		t.Fatalf("expected one pie trace")
	}
	tr := pie.Data[0]
	if tr.Kind != figure.Pie {
		t.Fatalf("kind = %v", tr.Kind)
	}
	if !reflect.DeepEqual(tr.Categories, []string{"A", "B"}) || !reflect.DeepEqual(tr.Values, []float64{2, 1}) {
		t.Fatalf("frequencies = %v %v", tr.Categories, tr.Values)
	}

	s := Statistics(tb, "category")
	want := []Item{
		{"Count", "3"},
		{"Unique values", "2"},
		{"Most frequent", "A"},
		{"Frequency", "2"},
	}
	if !reflect.DeepEqual(s.Items, want) {
		t.Fatalf("items = %+v", s.Items)
	}
}

func TestCategoricalWithValues(t *testing.T) {
	tb := mustTable(t,
		table.CategoricalColumn("category", "A", "B", "A"),
		table.NumericColumn("values", 10, 5, 1),
	)
	sums, ok := GroupSums(tb, "category")
	if !ok {
		t.Fatalf("expected sums")
	}
	if !reflect.DeepEqual(sums, []Bucket{{"A", 11}, {"B", 5}}) {
		t.Fatalf("sums = %+v", sums)
	}

	bar := PrimaryChart(tb, "category")
	tr := bar.Data[0]
	if tr.Kind != figure.Bar || !reflect.DeepEqual(tr.Categories, []string{"A", "B"}) || !reflect.DeepEqual(tr.Values, []float64{11, 5}) {
		t.Fatalf("bar = %+v", tr)
	}
	if !reflect.DeepEqual(tr.Text, []string{"11", "5"}) {
		t.Fatalf("bar text = %v", tr.Text)
	}
	if bar.Layout.XAxis.Title.Text != AxisCategories {
		t.Fatalf("x axis = %q", bar.Layout.XAxis.Title.Text)
	}

	pie := PieChart(tb, "category")
	pt := pie.Data[0]
	if !reflect.DeepEqual(pt.Categories, []string{"A", "B"}) || !reflect.DeepEqual(pt.Values, []float64{11, 5}) {
		t.Fatalf("pie = %+v", pt)
	}
}

func TestGroupSumsDropsMissing(t *testing.T) {
	tb := mustTable(t,
		table.CategoricalColumn("c", "x", "", "y", "y"),
		table.NumericColumn("values", 1, 100, math.NaN(), 2),
	)
	sums, _ := GroupSums(tb, "c")
	if !reflect.DeepEqual(sums, []Bucket{{"y", 2}, {"x", 1}}) {
		t.Fatalf("sums = %+v", sums)
	}
}

func TestFrequenciesTiesKeepFirstAppearance(t *testing.T) {
	tb := mustTable(t, table.CategoricalColumn("c", "b", "a", "c", "a", "b"))
	got := Frequencies(tb, "c")
	want := []Bucket{{"b", 2}, {"a", 2}, {"c", 1}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("freq = %+v", got)
	}
}

func TestDerivationsAreIdempotent(t *testing.T) {
	tb := mustTable(t,
		table.CategoricalColumn("category", "A", "B", "A", "C"),
		table.NumericColumn("values", 3, 3, 1, 3),
	)
	for _, col := range []string{"category", "values"} {
		a, _ := json.Marshal(PrimaryChart(tb, col))
		b, _ := json.Marshal(PrimaryChart(tb, col))
		if string(a) != string(b) {
			t.Fatalf("primary chart differs between runs for %s", col)
		}
		a, _ = json.Marshal(PieChart(tb, col))
		b, _ = json.Marshal(PieChart(tb, col))
		if string(a) != string(b) {
			t.Fatalf("pie chart differs between runs for %s", col)
		}
		if Statistics(tb, col).String() != Statistics(tb, col).String() {
			t.Fatalf("statistics differ between runs for %s", col)
		}
	}
}

func TestInfiniteValuesStayEncodable(t *testing.T) {
	tb := mustTable(t,
		table.CategoricalColumn("category", "A", "A", "B"),
		table.Column{Name: table.ValuesColumn, Kind: table.Numeric, Numbers: []float64{1e308, 1e308, 2}},
		table.Column{Name: "x", Kind: table.Numeric, Numbers: []float64{1, math.Inf(1), 3}},
	)
	for _, col := range []string{"x", "category"} {
		for name, fig := range map[string]figure.Figure{"primary": PrimaryChart(tb, col), "pie": PieChart(tb, col)} {
			if _, err := json.Marshal(fig); err != nil {
				t.Fatalf("%s chart of %s: %v", name, col, err)
			}
		}
	}
	hist := PrimaryChart(tb, "x")
	if got := hist.Data[0].Values; len(got) != 2 {
		t.Fatalf("histogram kept infinity: %v", got)
	}
	if s := Statistics(tb, "x"); s.Items[0].Value != "2" {
		t.Fatalf("count = %s, want 2", s.Items[0].Value)
	}
}
