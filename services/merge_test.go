package services

import (
	"reflect"
	"testing"
)

func TestPickMergeTarget(t *testing.T) {
	tests := []struct {
		name           string
		recipientCount int64
		senderCount    int64
		wantTarget     string
		wantSource     string
	}{
		{name: "recipient larger", recipientCount: 3, senderCount: 1, wantTarget: "R", wantSource: "S"},
		{name: "sender larger", recipientCount: 1, senderCount: 4, wantTarget: "S", wantSource: "R"},
		{name: "tie favors recipient", recipientCount: 2, senderCount: 2, wantTarget: "R", wantSource: "S"},
		{name: "both singletons", recipientCount: 1, senderCount: 1, wantTarget: "R", wantSource: "S"},
	}
	for _, tc := range tests {
		target, source := pickMergeTarget("R", tc.recipientCount, "S", tc.senderCount)
		if target != tc.wantTarget || source != tc.wantSource {
			t.Fatalf("%s: got target=%s source=%s, want target=%s source=%s",
				tc.name, target, source, tc.wantTarget, tc.wantSource)
		}
	}
}

func TestUnionStrings(t *testing.T) {
	tests := []struct {
		name string
		a, b []string
		want []string
	}{
		{name: "disjoint", a: []string{"dust2"}, b: []string{"inferno"}, want: []string{"dust2", "inferno"}},
		{name: "duplicates collapse", a: []string{"dust2", "mirage"}, b: []string{"mirage", "nuke"}, want: []string{"dust2", "mirage", "nuke"}},
		{name: "empty left", a: nil, b: []string{"anubis"}, want: []string{"anubis"}},
		{name: "empty right", a: []string{"vertigo"}, b: nil, want: []string{"vertigo"}},
		{name: "both empty", a: nil, b: nil, want: []string{}},
	}
	for _, tc := range tests {
		got := unionStrings(tc.a, tc.b)
		if !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("%s: unionStrings(%v, %v) = %v, want %v", tc.name, tc.a, tc.b, got, tc.want)
		}
	}
}
