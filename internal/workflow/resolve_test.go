package workflow

import "testing"

func TestResolveContinuation(t *testing.T) {
	cases := []struct {
		name string
		base string
		ref  string
		want string
	}{
		{"rewrites host", "https://n8n.example.com/", "http://localhost:5678/webhook-waiting/42", "https://n8n.example.com/webhook-waiting/42"},
		{"base without slash", "https://n8n.example.com", "http://10.0.0.3/webhook-waiting/42", "https://n8n.example.com/webhook-waiting/42"},
		{"keeps query", "https://n8n.example.com/", "http://internal/webhook/status?exec=7", "https://n8n.example.com/webhook/status?exec=7"},
		{"relative with slash", "https://n8n.example.com/", "/webhook-waiting/9", "https://n8n.example.com/webhook-waiting/9"},
		{"relative bare", "https://n8n.example.com/", "webhook-waiting/9", "https://n8n.example.com/webhook-waiting/9"},
		{"base with path", "https://gw.example.com/n8n/", "http://internal/webhook-waiting/1", "https://gw.example.com/n8n/webhook-waiting/1"},
		{"no base keeps absolute", "", "http://engine/exec/1", "http://engine/exec/1"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ResolveContinuation(tc.base, tc.ref)
			if err != nil {
				t.Fatalf("ResolveContinuation: %v", err)
			}
			if got != tc.want {
				t.Fatalf("want=%q got=%q", tc.want, got)
			}
		})
	}
}

func TestResolveContinuationErrors(t *testing.T) {
	if _, err := ResolveContinuation("https://n8n.example.com/", " "); err == nil {
		t.Fatal("expected error for empty reference")
	}
	if _, err := ResolveContinuation("", "/relative/only"); err == nil {
		t.Fatal("expected error for relative reference without base")
	}
	if _, err := ResolveContinuation("not a url", "http://engine/x"); err == nil {
		t.Fatal("expected error for relative base")
	}
}
