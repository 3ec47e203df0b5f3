package sessions

import (
	"net/url"
	"strings"
)

const (
	genericLoginPage = "SecretariaCandLogin.aspx"
	directLoginPage  = "SecretariaLogin.aspx"
)

type Links struct {
	Generic string  `json:"generic"`
	Direct  *string `json:"direct"`
}

type LinkBuilder struct {
	baseURL string
}

func NewLinkBuilder(baseURL string) *LinkBuilder {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &LinkBuilder{baseURL: baseURL}
}

// Build returns the candidate login link for the reference and, when an
// action id is known, the direct registration link for that session.
func (b *LinkBuilder) Build(ref, actionID string) Links {
	links := Links{
		Generic: b.baseURL + genericLoginPage + "?idCaracterizacao=" + rawURLEncode(ref),
	}

	if actionID != "" {
		direct := b.baseURL + directLoginPage +
			"?idAccao=" + rawURLEncode(actionID) +
			"&idCaracterizacao=" + rawURLEncode(ref)
		links.Direct = &direct
	}

	return links
}

// rawURLEncode percent-encodes everything outside the RFC 3986 unreserved
// set, spaces included.
func rawURLEncode(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
