// Package video declares the validation collaborator consulted for
// submitted video references.
package video

import (
	"net/url"
	"strings"

	apperrors "github.com/louisbranch/demonlist.space/internal/platform/errors"
)

// Validator turns a raw video reference into its canonical form or
// rejects it. Submission processing propagates its error verbatim.
type Validator interface {
	Validate(raw string) (string, error)
}

// HostAllowlist accepts http(s) references on a fixed set of video
// hosts. The canonical form pins the scheme to https and otherwise
// preserves the reference; rewriting into per-host video ids is left
// to richer implementations of Validator.
type HostAllowlist struct {
	hosts map[string]bool
}

// Hosts builds an allowlist for the given hostnames. Matching ignores
// case and a leading www subdomain.
func Hosts(hosts ...string) HostAllowlist {
	allowed := make(map[string]bool, len(hosts))
	for _, host := range hosts {
		allowed[normalizeHost(host)] = true
	}
	return HostAllowlist{hosts: allowed}
}

// Default returns the allowlist of hosts the list historically accepts
// records from.
func Default() HostAllowlist {
	return Hosts("youtube.com", "youtu.be", "vimeo.com", "everyplay.com", "twitch.tv", "bilibili.com")
}

// Validate implements Validator.
func (a HostAllowlist) Validate(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", apperrors.New(apperrors.CodeInvalidVideo, "the video reference is empty")
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "", apperrors.Wrap(apperrors.CodeInvalidVideo, "the video reference is not a url", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", apperrors.New(apperrors.CodeInvalidVideo, "the video reference must use http or https")
	}

	host := normalizeHost(parsed.Hostname())
	if !a.hosts[host] {
		return "", apperrors.WithMetadata(apperrors.CodeInvalidVideo, "the video host is not supported",
			map[string]string{"Host": parsed.Hostname()})
	}

	parsed.Scheme = "https"
	return parsed.String(), nil
}

func normalizeHost(host string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	return strings.TrimPrefix(host, "www.")
}

var _ Validator = HostAllowlist{}
