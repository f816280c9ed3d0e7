package fix

import "testing"

func TestParseField(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantTag int
		wantVal string
	}{
		{"simple", "8=FIX.4.2", 8, "FIX.4.2"},
		{"multi digit tag", "10201=Y", 10201, "Y"},
		{"empty value", "58=", 58, ""},
		{"value with equals", "58=a=b", 58, "a=b"},
		{"no separator", "garbage", 0, "garbage"},
		{"missing tag", "=value", 0, "=value"},
		{"non numeric tag", "abc=def", 0, "abc=def"},
		{"zero tag", "0=x", 0, "0=x"},
		{"empty", "", 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := parseField([]byte(tt.raw))
			if f.Tag != tt.wantTag {
				t.Errorf("Tag = %d, want %d", f.Tag, tt.wantTag)
			}
			if string(f.Value) != tt.wantVal {
				t.Errorf("Value = %q, want %q", f.Value, tt.wantVal)
			}
		})
	}
}

func TestParseField_CopiesInput(t *testing.T) {
	raw := []byte("55=IBM")
	f := parseField(raw)
	raw[3] = 'X'
	if string(f.Value) != "IBM" {
		t.Errorf("Value = %q, want IBM (input must be copied)", f.Value)
	}
}

func TestFieldString(t *testing.T) {
	tests := []struct {
		field Field
		want  string
	}{
		{Field{Tag: 8, Value: []byte("FIX.4.2")}, "8=FIX.4.2"},
		{Field{Tag: 58, Value: nil}, "58="},
		{Field{Value: []byte("garbage")}, "garbage"},
	}
	for _, tt := range tests {
		if got := tt.field.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestFieldWireLen(t *testing.T) {
	tests := []struct {
		raw string
	}{
		{"8=FIX.4.2"},
		{"10201=Y"},
		{"58="},
		{"garbage"},
	}
	for _, tt := range tests {
		f := parseField([]byte(tt.raw))
		if got, want := f.wireLen(), len(tt.raw)+1; got != want {
			t.Errorf("wireLen(%q) = %d, want %d", tt.raw, got, want)
		}
	}
}

func TestIsBeginString(t *testing.T) {
	tests := []struct {
		raw  string
		want bool
	}{
		{"8=FIX.4.2", true},
		{"8=FIX.4.4", true},
		{"8=FIXT.1.1", false},
		{"8=GARBLED", false},
		{"9=FIX.4.2", false},
		{"garbage", false},
	}
	for _, tt := range tests {
		if got := isBeginString(parseField([]byte(tt.raw))); got != tt.want {
			t.Errorf("isBeginString(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}
