package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDateRange(t *testing.T) {
	tests := []struct {
		input   string
		want    DateRange
		wantErr bool
	}{
		{"", DateRange{}, false},
		{"any", DateRange{}, false},
		{"1d", DateRange{Count: 1, Unit: DateUnitDay}, false},
		{"2w", DateRange{Count: 2, Unit: DateUnitWeek}, false},
		{"3M", DateRange{Count: 3, Unit: DateUnitMonth}, false},
		{" 1y ", DateRange{Count: 1, Unit: DateUnitYear}, false},
		{"1", DateRange{}, true},
		{"0d", DateRange{}, true},
		{"-1d", DateRange{}, true},
		{"5x", DateRange{}, true},
		{"wd", DateRange{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDateRange(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidInput))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDateRange_Since(t *testing.T) {
	now := time.Date(2024, time.March, 15, 13, 45, 0, 0, time.UTC)

	tests := []struct {
		name string
		r    DateRange
		want time.Time
	}{
		{"days", DateRange{Count: 1, Unit: DateUnitDay}, time.Date(2024, time.March, 14, 0, 0, 0, 0, time.UTC)},
		{"weeks", DateRange{Count: 2, Unit: DateUnitWeek}, time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)},
		{"months", DateRange{Count: 1, Unit: DateUnitMonth}, time.Date(2024, time.February, 15, 0, 0, 0, 0, time.UTC)},
		{"years", DateRange{Count: 1, Unit: DateUnitYear}, time.Date(2023, time.March, 15, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.r.Since(now))
		})
	}
}

func TestDateRange_IsSetAndString(t *testing.T) {
	assert.False(t, DateRange{}.IsSet())
	assert.Equal(t, "", DateRange{}.String())
	assert.False(t, DateRange{Count: 3, Unit: 'q'}.IsSet())

	r := DateRange{Count: 3, Unit: DateUnitMonth}
	assert.True(t, r.IsSet())
	assert.Equal(t, "3m", r.String())
}

func TestFilterState_NarrowsRemote(t *testing.T) {
	base := FilterState{Text: "deploy", SpaceKey: "ENG"}

	tests := []struct {
		name string
		next FilterState
		want bool
	}{
		{"text only", FilterState{Text: "release", SpaceKey: "ENG"}, false},
		{"unchanged", base, false},
		{"space", FilterState{Text: "deploy", SpaceKey: "OPS"}, true},
		{"contributor", FilterState{Text: "deploy", SpaceKey: "ENG", ContributorKey: "alice"}, true},
		{"date", FilterState{Text: "deploy", SpaceKey: "ENG", DateRange: DateRange{Count: 1, Unit: DateUnitWeek}}, true},
		{"type", FilterState{Text: "deploy", SpaceKey: "ENG", Type: ContentTypeBlogPost}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, base.NarrowsRemote(tt.next))
		})
	}
}

func TestSortOrder_Next(t *testing.T) {
	assert.Equal(t, SortAsc, SortNone.Next())
	assert.Equal(t, SortDesc, SortAsc.Next())
	assert.Equal(t, SortNone, SortDesc.Next())
}

func TestParseSortOrder(t *testing.T) {
	o, err := ParseSortOrder("DESC")
	require.NoError(t, err)
	assert.Equal(t, SortDesc, o)

	o, err = ParseSortOrder("none")
	require.NoError(t, err)
	assert.Equal(t, SortNone, o)

	_, err = ParseSortOrder("sideways")
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestSortState_ToggleCycle(t *testing.T) {
	var s SortState
	assert.False(t, s.Active())

	s = s.Toggle(SortByTitle)
	assert.Equal(t, SortState{Column: SortByTitle, Order: SortAsc}, s)
	assert.True(t, s.Active())

	s = s.Toggle(SortByTitle)
	assert.Equal(t, SortState{Column: SortByTitle, Order: SortDesc}, s)

	s = s.Toggle(SortByTitle)
	assert.Equal(t, SortState{}, s)
	assert.False(t, s.Active())
}

func TestSortState_ToggleNewColumnStartsAscending(t *testing.T) {
	s := SortState{Column: SortByTitle, Order: SortDesc}
	s = s.Toggle(SortByModified)
	assert.Equal(t, SortState{Column: SortByModified, Order: SortAsc}, s)
}

func TestSortColumn_IsValid(t *testing.T) {
	for _, c := range SortColumns {
		assert.True(t, c.IsValid(), c)
	}
	assert.False(t, SortColumn("size").IsValid())
}

func TestFilterSpec_Parse(t *testing.T) {
	got, err := FilterSpec{
		Text:        "  deploy ",
		Space:       "ENG",
		Contributor: "557058:abc",
		Since:       "2w",
		Type:        "BlogPost",
	}.Parse()

	require.NoError(t, err)
	assert.Equal(t, FilterState{
		Text:           "deploy",
		SpaceKey:       "ENG",
		ContributorKey: "557058:abc",
		DateRange:      DateRange{Count: 2, Unit: DateUnitWeek},
		Type:           ContentTypeBlogPost,
	}, got)

	all, err := FilterSpec{Type: "all"}.Parse()
	require.NoError(t, err)
	assert.Empty(t, all.Type)

	_, err = FilterSpec{Type: "whiteboard"}.Parse()
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = FilterSpec{Since: "yesterday"}.Parse()
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestSortSpec_Parse(t *testing.T) {
	tests := []struct {
		in      SortSpec
		want    SortState
		wantErr bool
	}{
		{in: SortSpec{}, want: SortState{}},
		{in: SortSpec{Column: "Modified"}, want: SortState{Column: SortByModified, Order: SortAsc}},
		{in: SortSpec{Column: "title", Order: "desc"}, want: SortState{Column: SortByTitle, Order: SortDesc}},
		{in: SortSpec{Column: "title", Order: "none"}, want: SortState{}},
		{in: SortSpec{Column: "score"}, wantErr: true},
		{in: SortSpec{Column: "title", Order: "up"}, wantErr: true},
	}

	for _, tt := range tests {
		got, err := tt.in.Parse()
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrInvalidInput, "%+v", tt.in)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "%+v", tt.in)
	}
}
