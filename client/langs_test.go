package client

import (
	"testing"
)

func TestSupportedLanguagesHaveNames(t *testing.T) {
	langs := SupportedLanguages()
	if len(langs) == 0 {
		t.Fatal("Expected at least one supported language")
	}

	for _, lang := range langs {
		if lang.Code == "" || lang.Name == "" {
			t.Errorf("Language entry missing code or name: %+v", lang)
		}
	}

	if langs[0].Code != "zh" {
		t.Errorf("Expected Chinese as the first target, got %q", langs[0].Code)
	}
	if langs[0].Name != "Chinese" {
		t.Errorf("Expected display name Chinese, got %q", langs[0].Name)
	}
}

func TestValidateTargetLang(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		want    string
		wantErr bool
	}{
		{name: "plain code", code: "zh", want: "zh"},
		{name: "region variant", code: "zh-CN", want: "zh"},
		{name: "uppercase", code: "EN", want: "en"},
		{name: "unsupported", code: "tlh", wantErr: true},
		{name: "garbage", code: "!!", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateTargetLang(tt.code)
			if tt.wantErr {
				if err == nil {
					t.Errorf("Expected error for %q", tt.code)
				}
				return
			}
			if err != nil {
				t.Fatalf("ValidateTargetLang(%q) failed: %v", tt.code, err)
			}
			if got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}
