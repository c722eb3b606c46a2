package protocol

import "testing"

func TestParse(t *testing.T) {
	cases := []struct {
		in      string
		want    Protocol
		wantErr bool
	}{
		{in: "v4", want: V4},
		{in: "v6", want: V6},
		{in: "v5", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, c := range cases {
		got, err := Parse(c.in)
		if c.wantErr {
			if err == nil {
				t.Errorf("Parse(%q) = %v, nil; want error", c.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("Parse(%q) returned error: %v", c.in, err)
		}
		if got != c.want {
			t.Errorf("Parse(%q) = %v; want %v", c.in, got, c.want)
		}
	}
}

func TestString(t *testing.T) {
	if V4.String() != "v4" {
		t.Errorf("V4.String() = %q; want v4", V4.String())
	}
	if V6.String() != "v6" {
		t.Errorf("V6.String() = %q; want v6", V6.String())
	}
}
