package geo

import (
	"errors"
	"testing"
)

func raw(neLat, neLng, swLat, swLng string) RawBounds {
	return RawBounds{NorthEastLat: neLat, NorthEastLng: neLng, SouthWestLat: swLat, SouthWestLng: swLng}
}

func TestResolve(t *testing.T) {
	cases := []struct {
		name    string
		in      RawBounds
		want    BoundingBox
		wantErr error
	}{
		{
			name: "valid box",
			in:   raw("23.05", "72.6", "23.0", "72.5"),
			want: BoundingBox{SouthWestLat: 23.0, SouthWestLng: 72.5, NorthEastLat: 23.05, NorthEastLng: 72.6},
		},
		{
			name: "whitespace tolerated",
			in:   raw(" 1 ", "1", "0", " 0"),
			want: BoundingBox{SouthWestLat: 0, SouthWestLng: 0, NorthEastLat: 1, NorthEastLng: 1},
		},
		{
			name: "degenerate point box",
			in:   raw("10", "20", "10", "20"),
			want: BoundingBox{SouthWestLat: 10, SouthWestLng: 20, NorthEastLat: 10, NorthEastLng: 20},
		},
		{name: "missing one", in: raw("1", "", "0", "0"), wantErr: ErrMissingParameter},
		{name: "missing all", in: RawBounds{}, wantErr: ErrMissingParameter},
		{name: "missing wins over bad number", in: raw("abc", "1", "0", ""), wantErr: ErrMissingParameter},
		{name: "not a number", in: raw("1", "1", "zero", "0"), wantErr: ErrInvalidNumber},
		{name: "NaN", in: raw("NaN", "1", "0", "0"), wantErr: ErrInvalidNumber},
		{name: "infinity", in: raw("1", "+Inf", "0", "0"), wantErr: ErrInvalidNumber},
		{name: "inverted latitude", in: raw("0", "1", "1", "0"), wantErr: ErrInvalidBounds},
		{name: "inverted longitude", in: raw("1", "0", "0", "1"), wantErr: ErrInvalidBounds},
		{name: "latitude out of range", in: raw("91", "1", "0", "0"), wantErr: ErrInvalidBounds},
		{name: "longitude out of range", in: raw("1", "1", "0", "-181"), wantErr: ErrInvalidBounds},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Resolve(tc.in)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("expected %v, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("got %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestContainsIsInclusive(t *testing.T) {
	box := BoundingBox{SouthWestLat: 23.0, SouthWestLng: 72.5, NorthEastLat: 23.05, NorthEastLng: 72.6}

	inside := [][2]float64{
		{23.0225, 72.5714},
		{23.0, 72.5},
		{23.05, 72.6},
		{23.0, 72.6},
		{23.05, 72.5},
	}
	for _, p := range inside {
		if !box.Contains(p[0], p[1]) {
			t.Fatalf("expected %v inside %+v", p, box)
		}
	}

	outside := [][2]float64{
		{22.9999, 72.55},
		{23.0501, 72.55},
		{23.02, 72.4999},
		{23.02, 72.6001},
		{72.5714, 23.0225},
	}
	for _, p := range outside {
		if box.Contains(p[0], p[1]) {
			t.Fatalf("expected %v outside %+v", p, box)
		}
	}
}
