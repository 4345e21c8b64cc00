package condition

import "testing"

func TestExactPattern(t *testing.T) {
	cases := map[string]string{
		"4.4.0":       "^4[.]4[.]0$",
		"4.4.0-rc1":   "^4[.]4[.]0-rc1$",
		"v1+build(2)": "^v1[+]build[(]2[)]$",
		"master":      "^master$",
	}
	for in, want := range cases {
		if got := ExactPattern(in); got != want {
			t.Fatalf("ExactPattern(%q)=%q want %q", in, got, want)
		}
	}
}

func TestAndNotGrouping(t *testing.T) {
	got := And(Not(Exact(GitTag, "4.4.0")), OneOf(Platform, []string{"Windows", "Linux"}))
	want := `!(GIT_TAG =~ "^4[.]4[.]0$") && (PLATFORM =~ "Windows|Linux")`
	if string(got) != want {
		t.Fatalf("got=%s", got)
	}
}

func TestOrOfAnds(t *testing.T) {
	got := Or(And(Not(Match(FirstLaunch, "^2022-.+")), Not(Match(FirstLaunch, "^2021-.+"))), Match(FirstLaunch, "^2022-1.+"))
	want := `(!(FIRST_LAUNCH =~ "^2022-.+") && !(FIRST_LAUNCH =~ "^2021-.+")) || (FIRST_LAUNCH =~ "^2022-1.+")`
	if string(got) != want {
		t.Fatalf("got=%s", got)
	}
}

func TestSingleTermIsUnwrapped(t *testing.T) {
	if got := And(Present(GitTag)); got != `GIT_TAG =~ ".+"` {
		t.Fatalf("got=%s", got)
	}
	if got := Or("", Not(Present(GitTag)), ""); got != `!(GIT_TAG =~ ".+")` {
		t.Fatalf("got=%s", got)
	}
}

func TestMatchEscapesQuotes(t *testing.T) {
	got := Match(WinLoadedModules, `"gameoverlayrenderer64.dll"`)
	want := `WIN_LOADEDMODULENAMES =~ "\"gameoverlayrenderer64.dll\""`
	if string(got) != want {
		t.Fatalf("got=%s", got)
	}
	// Quoted parentheses do not confuse grouping.
	g := And(Match(GitTag, "a)b"), Present(GitBranch))
	if string(g) != `(GIT_TAG =~ "a)b") && (GIT_BRANCH =~ ".+")` {
		t.Fatalf("got=%s", g)
	}
}
