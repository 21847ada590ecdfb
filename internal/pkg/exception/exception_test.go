package exception

import (
	"strings"
	"testing"
)

func TestException_Renderings(t *testing.T) {
	e := New("bad query ", true)
	e.Append("a < b", Code)
	e.Prepend("Error: ", Bold)

	if got := e.Plain(); got != "Error: bad query a < b" {
		t.Errorf("unexpected plain message: got %q", got)
	}
	if e.Error() != e.Plain() {
		t.Error("expected Error to match Plain")
	}
	if !e.IsUserFriendly() {
		t.Error("expected exception to be user friendly")
	}

	expectedHTML := "<strong>Error: </strong>bad query <pre>a &lt; b</pre>"
	if got := e.HTML(); got != expectedHTML {
		t.Errorf("expected %q, got %q", expectedHTML, got)
	}

	styled := e.Styled()
	for _, part := range []string{"Error:", "bad query", "a < b"} {
		if !strings.Contains(styled, part) {
			t.Errorf("expected styled rendering to contain %q, got %q", part, styled)
		}
	}
}

func TestException_HTMLLineBreaks(t *testing.T) {
	e := New("line one\nline two", false)
	e.Append("emphasis", Italic)

	if got := e.HTML(); got != "line one<br/>line two<em>emphasis</em>" {
		t.Errorf("unexpected HTML: got %q", got)
	}
	if e.IsUserFriendly() {
		t.Error("expected exception not to be user friendly")
	}
}
