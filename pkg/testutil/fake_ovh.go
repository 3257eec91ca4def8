// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	ovhtransport "github.com/platform-engineering-labs/formae-plugin-ovhcloud/pkg/transport/ovh"
)

// FakeReply is one scripted answer of FakeOVH.
type FakeReply struct {
	Body interface{}
	Err  error
}

// Reply answers with body, marshalled the way the OVH API would return it.
func Reply(body interface{}) FakeReply {
	return FakeReply{Body: body}
}

// Fail answers with a transport error.
func Fail(code ovhtransport.ErrorCode, httpCode int, message string) FakeReply {
	return FakeReply{Err: &ovhtransport.Error{Code: code, HTTPCode: httpCode, Message: message}}
}

// FakeOVH is a scripted ovh.Doer. Replies are consumed in order per
// "METHOD path"; the last reply of a route repeats. Unscripted routes
// answer 404.
type FakeOVH struct {
	mu       sync.Mutex
	routes   map[string][]FakeReply
	requests []ovhtransport.RequestOptions
}

var _ ovhtransport.Doer = (*FakeOVH)(nil)

// NewFakeOVH creates an empty fake.
func NewFakeOVH() *FakeOVH {
	return &FakeOVH{routes: make(map[string][]FakeReply)}
}

// On appends replies to a route.
func (f *FakeOVH) On(method, path string, replies ...FakeReply) *FakeOVH {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := method + " " + path
	f.routes[key] = append(f.routes[key], replies...)
	return f
}

// Do implements ovh.Doer.
func (f *FakeOVH) Do(_ context.Context, opts ovhtransport.RequestOptions) (*ovhtransport.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.requests = append(f.requests, opts)
	key := opts.Method + " " + opts.Path
	replies := f.routes[key]
	if len(replies) == 0 {
		return nil, &ovhtransport.Error{
			Code:     ovhtransport.ErrorCodeResourceNotFound,
			HTTPCode: 404,
			Message:  fmt.Sprintf("no route for %s", key),
		}
	}
	reply := replies[0]
	if len(replies) > 1 {
		f.routes[key] = replies[1:]
	}
	if reply.Err != nil {
		return nil, reply.Err
	}

	raw, err := json.Marshal(reply.Body)
	if err != nil {
		return nil, err
	}
	return ovhtransport.ParseResponse(raw)
}

// Requests returns every request received so far.
func (f *FakeOVH) Requests() []ovhtransport.RequestOptions {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]ovhtransport.RequestOptions(nil), f.requests...)
}

// Calls counts requests to a route.
func (f *FakeOVH) Calls(method, path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, r := range f.requests {
		if r.Method == method && r.Path == path {
			n++
		}
	}
	return n
}

// LastBody returns the body of the last request to a route.
func (f *FakeOVH) LastBody(method, path string) map[string]interface{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.requests) - 1; i >= 0; i-- {
		r := f.requests[i]
		if r.Method == method && r.Path == path {
			body, _ := r.Body.(map[string]interface{})
			return body
		}
	}
	return nil
}
