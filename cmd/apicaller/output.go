package main

import (
	"fmt"
	"io"

	"github.com/tidwall/gjson"

	"github.com/bft-labs/apicaller/pkg/call"
)

// outputMode selects what is printed for each executed call.
type outputMode struct {
	showHeader bool
	selectPath string
	dump       bool
}

// render writes the outcome of c to w.
func render(w io.Writer, c *call.Call, mode outputMode) error {
	if mode.showHeader {
		fmt.Fprintf(w, "%s\n", c.Status())
		if raw := c.RawResponseHeader(); raw != nil {
			fmt.Fprintf(w, "%s\n\n", raw)
		}
	}

	switch {
	case mode.selectPath != "":
		body := c.RawResponse()
		if !gjson.ValidBytes(body) {
			return fmt.Errorf("select %q: response is not JSON", mode.selectPath)
		}
		res := gjson.GetBytes(body, mode.selectPath)
		if !res.Exists() {
			return fmt.Errorf("select %q: no match", mode.selectPath)
		}
		_, err := fmt.Fprintln(w, res.String())
		return err
	case mode.dump:
		out, err := c.ResponseRepresentation()
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, out)
		return err
	default:
		_, err := fmt.Fprintf(w, "%s\n", c.RawResponse())
		return err
	}
}
