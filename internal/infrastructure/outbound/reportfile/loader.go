// Package reportfile builds normalized traces from raw sandbox report
// files. The engine itself only ever consumes the normalized Trace; this
// adapter keeps the parsing of vendor report shapes out of the core.
package reportfile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/PaesslerAG/jsonpath"
	"github.com/antchfx/xmlquery"

	"github.com/sophialabs/sigtrace/internal/domain/trace"
)

// Load reads a raw sandbox report from disk and normalizes it into a Trace,
// dispatching on the file extension (.json or .xml).
func Load(path string) (*trace.Trace, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read report: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FromJSON(data)
	case ".xml":
		return FromXML(data)
	default:
		return nil, fmt.Errorf("unsupported report format %q", filepath.Ext(path))
	}
}

// FromJSON normalizes a JSON sandbox report. The expected shape follows the
// common sandbox layout: behavior.summary holds the touched files, registry
// keys and mutexes; behavior.processes holds the hooked calls; network
// holds hosts, domains and http requests.
func FromJSON(data []byte) (*trace.Trace, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse JSON report: %w", err)
	}

	t := &trace.Trace{
		Files:        extractStrings(doc, "$.behavior.summary.files"),
		RegistryKeys: extractStrings(doc, "$.behavior.summary.keys"),
		Mutexes:      extractStrings(doc, "$.behavior.summary.mutexes"),
		Network: trace.Network{
			IPs:     extractStrings(doc, "$.network.hosts"),
			Domains: extractNetworkDomains(doc),
			URLs:    extractNetworkURLs(doc),
		},
	}

	processes, err := jsonpath.Get("$.behavior.processes", doc)
	if err == nil {
		t.APICalls = extractAPICalls(processes)
	}

	return t, nil
}

// extractStrings evaluates a JSONPath expression expected to yield a list
// of strings. Missing paths yield nil rather than an error: reports omit
// sections the sample never exercised.
func extractStrings(doc any, expr string) []string {
	result, err := jsonpath.Get(expr, doc)
	if err != nil {
		return nil
	}
	items, ok := result.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// extractNetworkDomains handles both plain string lists and object lists
// with a "domain" key, since sandboxes disagree on the shape.
func extractNetworkDomains(doc any) []string {
	result, err := jsonpath.Get("$.network.domains", doc)
	if err != nil {
		return nil
	}
	items, ok := result.([]any)
	if !ok {
		return nil
	}
	var out []string
	for _, item := range items {
		switch v := item.(type) {
		case string:
			out = append(out, v)
		case map[string]any:
			if s, ok := v["domain"].(string); ok {
				out = append(out, s)
			}
		}
	}
	return out
}

// extractNetworkURLs pulls request URIs out of the http section.
func extractNetworkURLs(doc any) []string {
	result, err := jsonpath.Get("$.network.http", doc)
	if err != nil {
		return nil
	}
	items, ok := result.([]any)
	if !ok {
		return nil
	}
	var out []string
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if s, ok := obj["uri"].(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func extractAPICalls(processes any) []trace.APICall {
	procList, ok := processes.([]any)
	if !ok {
		return nil
	}

	var calls []trace.APICall
	for _, p := range procList {
		proc, ok := p.(map[string]any)
		if !ok {
			continue
		}
		procName, _ := proc["process_name"].(string)

		callList, ok := proc["calls"].([]any)
		if !ok {
			continue
		}
		for _, c := range callList {
			callObj, ok := c.(map[string]any)
			if !ok {
				continue
			}
			call := trace.APICall{Process: procName}
			call.API, _ = callObj["api"].(string)
			call.Category, _ = callObj["category"].(string)

			if argList, ok := callObj["arguments"].([]any); ok {
				call.Arguments = make(map[string]string, len(argList))
				for _, a := range argList {
					argObj, ok := a.(map[string]any)
					if !ok {
						continue
					}
					name, _ := argObj["name"].(string)
					if name == "" {
						continue
					}
					call.Arguments[name] = fmt.Sprintf("%v", argObj["value"])
				}
			}
			calls = append(calls, call)
		}
	}
	return calls
}

// FromXML normalizes an XML sandbox report with the same sections as the
// JSON shape.
func FromXML(data []byte) (*trace.Trace, error) {
	doc, err := xmlquery.Parse(strings.NewReader(string(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse XML report: %w", err)
	}

	t := &trace.Trace{
		Files:        innerTexts(doc, "//behavior/summary/files/file"),
		RegistryKeys: innerTexts(doc, "//behavior/summary/keys/key"),
		Mutexes:      innerTexts(doc, "//behavior/summary/mutexes/mutex"),
		Network: trace.Network{
			IPs:     innerTexts(doc, "//network/hosts/host"),
			Domains: innerTexts(doc, "//network/domains/domain"),
			URLs:    innerTexts(doc, "//network/http/request/uri"),
		},
	}

	for _, procNode := range xmlquery.Find(doc, "//behavior/processes/process") {
		procName := procNode.SelectAttr("name")
		for _, callNode := range xmlquery.Find(procNode, "calls/call") {
			call := trace.APICall{
				Process:  procName,
				API:      callNode.SelectAttr("api"),
				Category: callNode.SelectAttr("category"),
			}
			argNodes := xmlquery.Find(callNode, "arguments/argument")
			if len(argNodes) > 0 {
				call.Arguments = make(map[string]string, len(argNodes))
				for _, argNode := range argNodes {
					name := argNode.SelectAttr("name")
					if name == "" {
						continue
					}
					call.Arguments[name] = argNode.InnerText()
				}
			}
			t.APICalls = append(t.APICalls, call)
		}
	}

	return t, nil
}

func innerTexts(doc *xmlquery.Node, expr string) []string {
	nodes := xmlquery.Find(doc, expr)
	if len(nodes) == 0 {
		return nil
	}
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.InnerText())
	}
	return out
}
