package semver

import "testing"

func mustParse(t *testing.T, s string) Version {
	t.Helper()
	v, err := Parse(s)
	if err != nil {
		t.Fatalf("Parse(%q) failed: %v", s, err)
	}
	return v
}

func TestParse_RoundTrip(t *testing.T) {
	cases := []string{
		"1.2.3",
		"0.0.1",
		"1.0.0-alpha",
		"1.0.0-alpha.1",
		"1.0.0-0.3.7",
		"1.0.0+build.123",
		"1.0.0-beta+exp.sha.5114f85",
	}
	for _, c := range cases {
		v := mustParse(t, c)
		if got := v.String(); got != c {
			t.Errorf("round trip mismatch: Parse(%q).String() = %q", c, got)
		}
	}
}

func TestParse_Rejections(t *testing.T) {
	cases := []string{"01.0.0", "1.2.3-", "1.2.3-01", "1.2.3-alpha..1", "1.2.3-alpha_beta"}
	for _, c := range cases {
		if _, err := Parse(c); err == nil {
			t.Errorf("expected Parse(%q) to fail", c)
		}
	}
}

func TestCompare_PreReleaseOrdering(t *testing.T) {
	if !mustParse(t, "1.0.0-alpha.1").Less(mustParse(t, "1.0.0-alpha.2")) {
		t.Fatalf("expected alpha.1 < alpha.2")
	}
	if !mustParse(t, "1.0.0-alpha").Less(mustParse(t, "1.0.0")) {
		t.Fatalf("expected pre-release < release")
	}
	if !mustParse(t, "1.0.0-alpha").Less(mustParse(t, "1.0.0-alpha.1")) {
		t.Fatalf("expected fewer fields to sort lower when otherwise equal")
	}
	if !mustParse(t, "1.0.0-alpha.1").Less(mustParse(t, "1.0.0-alpha.beta")) {
		t.Fatalf("expected numeric identifiers to sort below alphanumeric")
	}
}

func TestCompare_BuildMetadataIgnored(t *testing.T) {
	a := mustParse(t, "1.0.0+build.1")
	b := mustParse(t, "1.0.0+build.2")
	if !a.Equal(b) {
		t.Fatalf("expected build metadata to be ignored in comparison")
	}
}

func TestSatisfies_Tilde(t *testing.T) {
	ok, err := mustParse(t, "1.2.3").Satisfies("~> 1.2")
	if err != nil || !ok {
		t.Fatalf("expected 1.2.3 to satisfy ~> 1.2: ok=%v err=%v", ok, err)
	}
	ok, err = mustParse(t, "2.0.0").Satisfies("~> 1.2")
	if err != nil || ok {
		t.Fatalf("expected 2.0.0 to NOT satisfy ~> 1.2: ok=%v err=%v", ok, err)
	}
}

func TestSatisfies_AndRange(t *testing.T) {
	ok, err := mustParse(t, "1.2.3").Satisfies(">=1.0.0 <2.0.0")
	if err != nil || !ok {
		t.Fatalf("expected 1.2.3 to satisfy >=1.0.0 <2.0.0: ok=%v err=%v", ok, err)
	}
}

func TestSatisfies_Or(t *testing.T) {
	ok, err := mustParse(t, "3.0.0").Satisfies(">=1.0.0 <2.0.0 || >=3.0.0")
	if err != nil || !ok {
		t.Fatalf("expected 3.0.0 to satisfy either branch: ok=%v err=%v", ok, err)
	}
}

func TestSatisfies_TildeMajorOnly(t *testing.T) {
	ok, err := mustParse(t, "9.9.9").Satisfies("~> 1")
	if err != nil || !ok {
		t.Fatalf("expected ~> 1 to have no upper bound: ok=%v err=%v", ok, err)
	}
	ok, err = mustParse(t, "0.9.9").Satisfies("~> 1")
	if err != nil || ok {
		t.Fatalf("expected 0.9.9 to fail lower bound of ~> 1")
	}
}
