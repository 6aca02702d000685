package avro

import "testing"

func TestIsValidType(t *testing.T) {
	tests := []struct {
		typ  Type
		want bool
	}{
		{TypeString, true},
		{TypeBytes, true},
		{TypeBoolean, true},
		{TypeInt, true},
		{TypeLong, true},
		{TypeFloat, true},
		{TypeDouble, true},
		{"null", false},
		{"record", false},
		{"String", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.typ), func(t *testing.T) {
			if got := IsValidType(tt.typ); got != tt.want {
				t.Errorf("IsValidType(%q) = %v, want %v", tt.typ, got, tt.want)
			}
		})
	}
}
