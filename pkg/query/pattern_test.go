package query

import (
	stderrors "errors"
	"testing"

	"github.com/actionsemantics/sage/pkg/common/errors"
	"github.com/actionsemantics/sage/pkg/graph"
)

func TestParse(t *testing.T) {
	cases := []struct {
		name    string
		pattern string
		want    graph.Filter
	}{
		{
			name:    "full pattern with wildcard object",
			pattern: "?subject='accountant' ?predicate='invoicing' ?object=*",
			want:    graph.Filter{Subject: "accountant", Predicate: "invoicing", Limit: MaxResults},
		},
		{
			name:    "single constraint",
			pattern: "?predicate=performs",
			want:    graph.Filter{Predicate: "performs", Limit: MaxResults},
		},
		{
			name:    "double quotes and mixed case field",
			pattern: `?Subject="warehouse_worker"`,
			want:    graph.Filter{Subject: "warehouse_worker", Limit: MaxResults},
		},
		{
			name:    "quoted value containing spaces",
			pattern: `?object='cold storage unit'`,
			want:    graph.Filter{Object: "cold storage unit", Limit: MaxResults},
		},
		{
			name:    "unknown fields are ignored",
			pattern: "?subject=a ?color=blue ?weight=3",
			want:    graph.Filter{Subject: "a", Limit: MaxResults},
		},
		{
			name:    "bare words are skipped",
			pattern: "find ?subject=a please",
			want:    graph.Filter{Subject: "a", Limit: MaxResults},
		},
		{
			name:    "all wildcards",
			pattern: "?subject=* ?predicate=* ?object=*",
			want:    graph.Filter{Limit: MaxResults},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Parse(tc.pattern)
			if err != nil {
				t.Fatalf("Parse(%q) failed: %v", tc.pattern, err)
			}
			if *got != tc.want {
				t.Errorf("Parse(%q) = %+v, want %+v", tc.pattern, *got, tc.want)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	for _, pattern := range []string{"", "   ", "?subject", "?="} {
		_, err := Parse(pattern)
		if pattern == "?=" {
			// "?=" has an equals sign with empty field and value; it parses
			// to an unconstrained filter rather than failing.
			if err != nil {
				t.Errorf("Parse(%q) unexpectedly failed: %v", pattern, err)
			}
			continue
		}
		if !stderrors.Is(err, errors.ErrInvalidInput) {
			t.Errorf("Parse(%q): expected ErrInvalidInput, got %v", pattern, err)
		}
	}
}
