package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

const a1Prefix = "/a1-p/policytypes"

// PolicyRef identifies one policy instance on a RIC.
type PolicyRef struct {
	TypeID   string
	PolicyID string
}

// A1Client speaks the A1 policy interface of a RIC through a Client.
type A1Client struct {
	client Client
}

func NewA1Client(client Client) *A1Client {
	return &A1Client{client: client}
}

// PolicyTypeIDs lists the policy types the RIC supports.
func (a *A1Client) PolicyTypeIDs(ctx context.Context, baseURL string) ([]string, error) {
	var ids []string
	if err := a.getJSON(ctx, a1URL(baseURL), &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// PolicyTypeSchema fetches the create schema of one policy type.
func (a *A1Client) PolicyTypeSchema(ctx context.Context, baseURL, typeID string) (json.RawMessage, error) {
	req := Request{Method: http.MethodGet, URL: a1URL(baseURL, typeID)}
	resp, err := a.client.Call(ctx, req)
	if err := Check(req, resp, err); err != nil {
		return nil, err
	}
	var body struct {
		CreateSchema json.RawMessage `json:"create_schema"`
	}
	if err := json.Unmarshal(resp.Body, &body); err == nil && len(body.CreateSchema) > 0 {
		return body.CreateSchema, nil
	}
	if !json.Valid(resp.Body) {
		return nil, fmt.Errorf("remote: policy type %q schema is not json", typeID)
	}
	return json.RawMessage(resp.Body), nil
}

// PolicyIdentities lists every policy instance on the RIC across its types.
func (a *A1Client) PolicyIdentities(ctx context.Context, baseURL string) ([]PolicyRef, error) {
	typeIDs, err := a.PolicyTypeIDs(ctx, baseURL)
	if err != nil {
		return nil, err
	}
	var out []PolicyRef
	for _, typeID := range typeIDs {
		var ids []string
		if err := a.getJSON(ctx, a1URL(baseURL, typeID, "policies"), &ids); err != nil {
			return nil, err
		}
		for _, id := range ids {
			out = append(out, PolicyRef{TypeID: typeID, PolicyID: id})
		}
	}
	return out, nil
}

func (a *A1Client) PutPolicy(ctx context.Context, baseURL, typeID, policyID string, payload json.RawMessage) error {
	req := Request{
		Method: http.MethodPut,
		URL:    a1URL(baseURL, typeID, "policies", policyID),
		Body:   payload,
	}
	resp, err := a.client.Call(ctx, req)
	return Check(req, resp, err)
}

func (a *A1Client) DeletePolicy(ctx context.Context, baseURL, typeID, policyID string) error {
	req := Request{
		Method: http.MethodDelete,
		URL:    a1URL(baseURL, typeID, "policies", policyID),
	}
	resp, err := a.client.Call(ctx, req)
	if resp.StatusCode == http.StatusNotFound {
		return nil
	}
	return Check(req, resp, err)
}

func (a *A1Client) getJSON(ctx context.Context, target string, out any) error {
	req := Request{Method: http.MethodGet, URL: target}
	resp, err := a.client.Call(ctx, req)
	if err := Check(req, resp, err); err != nil {
		return err
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return fmt.Errorf("remote: decode %s: %w", target, err)
	}
	return nil
}

func a1URL(baseURL string, segments ...string) string {
	var b strings.Builder
	b.WriteString(strings.TrimRight(strings.TrimSpace(baseURL), "/"))
	b.WriteString(a1Prefix)
	for _, s := range segments {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(s))
	}
	return b.String()
}
