package prctx

import "testing"

func TestFromURL(t *testing.T) {
	ctx, err := FromURL("https://dev.azure.com/acme/Platform/_git/billing/pullrequest/1234")
	if err != nil {
		t.Fatalf("FromURL: %v", err)
	}
	if !ctx.IsPR {
		t.Error("IsPR = false")
	}
	if ctx.PRNumber != 1234 {
		t.Errorf("PRNumber = %d", ctx.PRNumber)
	}
	if ctx.OrganizationURL != "https://dev.azure.com/acme" {
		t.Errorf("OrganizationURL = %q", ctx.OrganizationURL)
	}
	if ctx.Project != "Platform" || ctx.Repository != "billing" {
		t.Errorf("project/repo = %q/%q", ctx.Project, ctx.Repository)
	}
}

func TestFromURL_Invalid(t *testing.T) {
	urls := []string{
		"not a url",
		"https://dev.azure.com/acme/Platform",
		"https://dev.azure.com/acme/Platform/_git/billing/pullrequest/abc",
	}
	for _, u := range urls {
		if _, err := FromURL(u); err == nil {
			t.Errorf("expected error for %q", u)
		}
	}
}

func TestFromEnv_PRBuild(t *testing.T) {
	t.Setenv("SYSTEM_PULLREQUEST_PULLREQUESTID", "77")
	t.Setenv("SYSTEM_TEAMFOUNDATIONCOLLECTIONURI", "https://dev.azure.com/acme/")
	t.Setenv("SYSTEM_TEAMPROJECT", "Platform")
	t.Setenv("BUILD_REPOSITORY_NAME", "billing")
	t.Setenv("BUILD_REQUESTEDFOR", "Sam Doe")
	t.Setenv("SYSTEM_PULLREQUEST_SOURCEBRANCH", "refs/heads/feature/retry")
	t.Setenv("SYSTEM_PULLREQUEST_TARGETBRANCH", "refs/heads/main")

	ctx := FromEnv()
	if !ctx.IsPR {
		t.Fatal("IsPR = false")
	}
	if ctx.PRNumber != 77 {
		t.Errorf("PRNumber = %d", ctx.PRNumber)
	}
	if ctx.OrganizationURL != "https://dev.azure.com/acme" {
		t.Errorf("OrganizationURL = %q (trailing slash should be stripped)", ctx.OrganizationURL)
	}
	if ctx.SourceBranch != "feature/retry" || ctx.TargetBranch != "main" {
		t.Errorf("branches = %q -> %q", ctx.SourceBranch, ctx.TargetBranch)
	}
	if ctx.PRURL != "https://dev.azure.com/acme/Platform/_git/billing/pullrequest/77" {
		t.Errorf("PRURL = %q", ctx.PRURL)
	}
}

func TestFromEnv_NotAPR(t *testing.T) {
	t.Setenv("SYSTEM_PULLREQUEST_PULLREQUESTID", "")
	if ctx := FromEnv(); ctx.IsPR {
		t.Error("IsPR = true outside a PR build")
	}
}

func TestResolve_URLWinsOverEnv(t *testing.T) {
	t.Setenv("SYSTEM_PULLREQUEST_PULLREQUESTID", "1")

	ctx, err := Resolve("https://dev.azure.com/acme/Platform/_git/billing/pullrequest/99")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if ctx.PRNumber != 99 {
		t.Errorf("PRNumber = %d, explicit URL should win", ctx.PRNumber)
	}
}
