package util

import "testing"

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{name: "plain", in: "multa.jpg", want: "multa.jpg"},
		{name: "separators", in: "fotos/multa\\1.png", want: "fotos_multa_1.png"},
		{name: "control chars", in: "mu\x00lta\n.png", want: "multa.png"},
		{name: "traversal", in: "../../etc/passwd", wantErr: true},
		{name: "blank", in: "   ", wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			got, err := SanitizeFileName(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("SanitizeFileName(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
