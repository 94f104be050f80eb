package response

import "testing"

func TestRedirectURL(t *testing.T) {
	t.Parallel()

	cases := []struct {
		r    Redirect
		want string
	}{
		{Redirect{To: "/login"}, "/login"},
		{Redirect{To: "/login", ReturnURL: "/events?x=1"}, "/login?returnUrl=%2Fevents%3Fx%3D1"},
		{Redirect{To: "/organizations", Reason: "org-mismatch"}, "/organizations?error=org-mismatch"},
	}
	for _, tc := range cases {
		if got := tc.r.URL(); got != tc.want {
			t.Fatalf("URL(%+v) = %q, want %q", tc.r, got, tc.want)
		}
	}
}
