package main

import (
	"fmt"
	"sort"

	"github.com/bft-labs/apicaller/pkg/call"
	"github.com/bft-labs/apicaller/pkg/calls"
)

var kinds = map[string]func() call.Kind{
	"get-json":    func() call.Kind { return &calls.GetJSON{} },
	"get-html":    func() call.Kind { return calls.GetHTML{} },
	"delete-json": func() call.Kind { return &calls.DeleteJSON{} },
	"post-form":   func() call.Kind { return &calls.PostForm{} },
	"post-json":   func() call.Kind { return &calls.PostJSON{} },
	"put-json":    func() call.Kind { return &calls.PutJSON{} },
}

func kindNames() []string {
	names := make([]string, 0, len(kinds))
	for name := range kinds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func newKind(name string) (call.Kind, error) {
	ctor, ok := kinds[name]
	if !ok {
		return nil, fmt.Errorf("unknown call kind %q (want one of %v)", name, kindNames())
	}
	return ctor(), nil
}
