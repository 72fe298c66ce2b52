// Package prctx resolves the pull-request identity for one pipeline run,
// either from Azure Pipelines build variables or from an explicitly supplied
// PR URL. The result is read-only configuration for the rest of the run.
package prctx

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/argus-ci/argus/internal/analysis"
)

// prURLRe parses dev.azure.com PR URLs:
// https://dev.azure.com/{org}/{project}/_git/{repo}/pullrequest/{id}
var prURLRe = regexp.MustCompile(`(https?://[^/]+/[^/]+)/([^/]+)/_git/([^/]+)/pullrequest/(\d+)`)

// Resolve builds a PRContext. An explicit prURL wins over the environment;
// with neither present the context reports IsPR=false.
func Resolve(prURL string) (analysis.PRContext, error) {
	if prURL != "" {
		return FromURL(prURL)
	}
	return FromEnv(), nil
}

// FromURL parses an Azure DevOps pull request URL.
func FromURL(prURL string) (analysis.PRContext, error) {
	m := prURLRe.FindStringSubmatch(prURL)
	if m == nil {
		return analysis.PRContext{}, fmt.Errorf("cannot parse pull request URL: %s", prURL)
	}
	prNumber, err := strconv.Atoi(m[4])
	if err != nil {
		return analysis.PRContext{}, fmt.Errorf("invalid PR number in URL: %s", m[4])
	}
	return analysis.PRContext{
		IsPR:            true,
		PRNumber:        prNumber,
		OrganizationURL: m[1],
		Project:         m[2],
		Repository:      m[3],
		PRURL:           prURL,
	}, nil
}

// FromEnv reads the standard Azure Pipelines PR variables. Outside a PR
// build the context reports IsPR=false.
func FromEnv() analysis.PRContext {
	ctx := analysis.PRContext{
		OrganizationURL: strings.TrimRight(os.Getenv("SYSTEM_TEAMFOUNDATIONCOLLECTIONURI"), "/"),
		Project:         os.Getenv("SYSTEM_TEAMPROJECT"),
		Repository:      os.Getenv("BUILD_REPOSITORY_NAME"),
		Author:          os.Getenv("BUILD_REQUESTEDFOR"),
		SourceBranch:    shortBranch(os.Getenv("SYSTEM_PULLREQUEST_SOURCEBRANCH")),
		TargetBranch:    shortBranch(os.Getenv("SYSTEM_PULLREQUEST_TARGETBRANCH")),
	}

	if id := os.Getenv("SYSTEM_PULLREQUEST_PULLREQUESTID"); id != "" {
		if n, err := strconv.Atoi(id); err == nil && n > 0 {
			ctx.IsPR = true
			ctx.PRNumber = n
		}
	}
	if ctx.IsPR && ctx.OrganizationURL != "" && ctx.Project != "" && ctx.Repository != "" {
		ctx.PRURL = fmt.Sprintf("%s/%s/_git/%s/pullrequest/%d",
			ctx.OrganizationURL, ctx.Project, ctx.Repository, ctx.PRNumber)
	}
	return ctx
}

// Metadata collects build identification from the environment.
func Metadata() analysis.Metadata {
	return analysis.Metadata{
		BuildID:    os.Getenv("BUILD_BUILDID"),
		Branch:     shortBranch(os.Getenv("BUILD_SOURCEBRANCH")),
		Commit:     os.Getenv("BUILD_SOURCEVERSION"),
		Repository: os.Getenv("BUILD_REPOSITORY_NAME"),
	}
}

func shortBranch(ref string) string {
	return strings.TrimPrefix(ref, "refs/heads/")
}
