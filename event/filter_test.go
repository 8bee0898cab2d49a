package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterMatch(t *testing.T) {
	tests := []struct {
		name   string
		filter Filter
		event  string
		want   bool
	}{
		{name: "zero value is all", filter: Filter{}, event: "post", want: true},
		{name: "all", filter: All(), event: "anything", want: true},
		{name: "named hit", filter: Named("post", "comment"), event: "comment", want: true},
		{name: "named miss", filter: Named("post"), event: "user", want: false},
		{name: "named empty", filter: Named(), event: "post", want: false},
		{name: "filter of nothing", filter: FilterOf(), event: "dog", want: true},
		{name: "filter of names", filter: FilterOf("dog"), event: "like", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Match(tt.event))
		})
	}
}

func TestFilterWithout(t *testing.T) {
	f := Named("post", "comment", "dog")

	rest := f.Without("comment", "missing")
	assert.Equal(t, []string{"dog", "post"}, rest.Names())
	assert.Equal(t, []string{"comment", "dog", "post"}, f.Names(), "original must not change")

	empty := rest.Without("dog", "post")
	assert.False(t, empty.IsAll())
	assert.Equal(t, 0, empty.Len())
	assert.False(t, empty.Match("post"))

	assert.True(t, All().Without("post").IsAll())
}

func TestFilterEqual(t *testing.T) {
	assert.True(t, All().Equal(Filter{}))
	assert.True(t, Named("a", "b").Equal(Named("b", "a", "a")))
	assert.False(t, Named("a").Equal(Named("a", "b")))
	assert.False(t, Named().Equal(All()))
	assert.Equal(t, "*", All().String())
	assert.Equal(t, "[a,b]", Named("b", "a").String())
}
