package main

import (
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

func newClient(base string) *resty.Client {
	return resty.New().
		SetBaseURL(base).
		SetHeader("Content-Type", "application/json").
		SetTimeout(15 * time.Second)
}

func doGet(base, path string) (string, error) {
	resp, err := newClient(base).R().Get(path)
	if err != nil {
		return "", err
	}
	if resp.IsError() && len(resp.Body()) == 0 {
		return "", fmt.Errorf("GET %s: status %d", path, resp.StatusCode())
	}
	return resp.String(), nil
}

func doPostJSON(base, path string, payload interface{}) (string, error) {
	resp, err := newClient(base).R().SetBody(payload).Post(path)
	if err != nil {
		return "", err
	}
	if resp.IsError() && len(resp.Body()) == 0 {
		return "", fmt.Errorf("POST %s: status %d", path, resp.StatusCode())
	}
	return resp.String(), nil
}
