package credential_test

import (
	"errors"
	"testing"

	"github.com/healthportal-app/portal-client/internal/platform/auth/credential"
)

func FuzzDecode(f *testing.F) {
	f.Add("")
	f.Add("a.b.c")
	f.Add(seg(`{"alg":"HS256"}`) + "." + seg(`{"role":"patient"}`) + ".s")
	f.Add(seg(`{"alg":"none"}`) + "." + seg(`{"role":"doctor","exp":1e30}`) + ".")
	f.Add(seg(`{}`) + "." + seg(`{"role":{"x":1}}`) + ".")

	f.Fuzz(func(t *testing.T, in string) {
		c, err := credential.Decode(in)
		if err != nil {
			var de *credential.DecodeError
			if !errors.As(err, &de) {
				t.Fatalf("non-DecodeError for %q: %T %v", in, err, err)
			}
			if !errors.Is(err, credential.ErrMalformed) && !errors.Is(err, credential.ErrMissingClaim) {
				t.Fatalf("unexpected kind for %q: %v", in, err)
			}
			return
		}
		if !c.Role.IsValid() {
			t.Fatalf("decoded invalid role %q from %q", c.Role, in)
		}
	})
}
