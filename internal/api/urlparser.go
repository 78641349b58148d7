package api

import (
	"fmt"
	"net/url"

	"github.com/zhachao2010/one-step-aws/pkg/dlcore"
)

// ParseDownloadURL parses a deep-link URL of the form
// "onestep://download?ak=...&sk=...&bucket=...&region=...&project=...&expires=..."
// into a DownloadParams bag. ak, sk, bucket, region, and project are
// required; expires is optional.
func ParseDownloadURL(raw string) (DownloadParams, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return DownloadParams{}, fmt.Errorf("%w: %v", dlcore.ErrUrlParse, err)
	}

	q := u.Query()
	get := func(name string) (string, error) {
		v := q.Get(name)
		if v == "" {
			return "", fmt.Errorf("%w: missing required parameter %q", dlcore.ErrUrlParse, name)
		}
		return v, nil
	}

	accessKey, err := get("ak")
	if err != nil {
		return DownloadParams{}, err
	}
	secretKey, err := get("sk")
	if err != nil {
		return DownloadParams{}, err
	}
	bucket, err := get("bucket")
	if err != nil {
		return DownloadParams{}, err
	}
	region, err := get("region")
	if err != nil {
		return DownloadParams{}, err
	}
	project, err := get("project")
	if err != nil {
		return DownloadParams{}, err
	}

	var expires *string
	if v := q.Get("expires"); v != "" {
		expires = &v
	}

	return DownloadParams{
		AccessKey: accessKey,
		SecretKey: secretKey,
		Bucket:    bucket,
		Region:    region,
		Project:   project,
		Expires:   expires,
	}, nil
}
