package configutil

import "testing"

func TestDecodeSettingsFoldsKeyStyles(t *testing.T) {
	var out struct {
		Endpoint string `mapstructure:"endpoint"`
		RateWPM  int    `mapstructure:"rate_wpm"`
	}
	err := DecodeSettings(map[string]any{
		"Endpoint": "http://127.0.0.1:8123",
		"rate-wpm": "200",
	}, &out)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Endpoint != "http://127.0.0.1:8123" {
		t.Fatalf("endpoint = %q", out.Endpoint)
	}
	if out.RateWPM != 200 {
		t.Fatalf("rate_wpm = %d, want weak-typed 200", out.RateWPM)
	}
}

func TestDecodeSettingsEmptyInputIsNoop(t *testing.T) {
	out := struct {
		Voice string `mapstructure:"voice"`
	}{Voice: "alba"}
	if err := DecodeSettings(nil, &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Voice != "alba" {
		t.Fatalf("voice = %q, want untouched default", out.Voice)
	}
}

func TestValidateSettingsRejectsUnknownKeys(t *testing.T) {
	schema, err := BackendSchema("pocket-tts")
	if err != nil {
		t.Fatalf("schema: %v", err)
	}
	err = ValidateSettings(map[string]any{"endpont": "x"}, schema)
	if err == nil {
		t.Fatal("expected unknown-key error")
	}
}

func TestValidateSettingsAcceptsFoldedKeys(t *testing.T) {
	schema, _ := BackendSchema("say")
	if err := ValidateSettings(map[string]any{"Rate-WPM": 180}, schema); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestValidateSettingsReportsMissingRequired(t *testing.T) {
	schema := Schema{Required: []string{"api_key"}}
	if err := ValidateSettings(map[string]any{"api_key": " "}, schema); err == nil {
		t.Fatal("expected missing-required error for blank value")
	}
	if err := ValidateSettings(map[string]any{}, schema); err == nil {
		t.Fatal("expected missing-required error for absent key")
	}
}

func TestBackendSchemaUnknown(t *testing.T) {
	if _, err := BackendSchema("polly"); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}
