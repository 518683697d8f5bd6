package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/rowguard/rowguard-go/headers"
	"github.com/rowguard/rowguard-go/routes"
)

// RestClient exposes the PostgREST data plane: table queries and stored
// procedures.
type RestClient struct {
	client *Client
	schema string
}

// From starts a query against a table or view.
func (r *RestClient) From(table string) *QueryBuilder {
	q := &QueryBuilder{
		client: r.client,
		schema: r.schema,
		path:   routes.Rest + "/" + table,
		method: http.MethodGet,
		params: url.Values{},
	}
	if strings.TrimSpace(table) == "" {
		q.err = fmt.Errorf("backend: table name required")
	}
	return q
}

// RPC starts a stored-procedure call. Params are sent as the JSON body.
func (r *RestClient) RPC(fn string, params any) *QueryBuilder {
	q := &QueryBuilder{
		client: r.client,
		schema: r.schema,
		path:   routes.RestRPC + "/" + fn,
		method: http.MethodPost,
		params: url.Values{},
		body:   params,
	}
	if strings.TrimSpace(fn) == "" {
		q.err = fmt.Errorf("backend: rpc function name required")
	}
	return q
}

// QueryBuilder accumulates a PostgREST request through a fluent chain and
// issues it on Execute. Builder errors are sticky: the first one wins and
// surfaces at Execute.
type QueryBuilder struct {
	client *Client
	schema string
	path   string
	method string
	params url.Values
	prefer []string
	body   any
	single bool
	err    error

	// before runs ahead of the network call; rowguard installs the
	// credential validity check here so chains stay guarded end to end.
	before func() error
}

// WithBefore registers a hook that runs before the request is sent. Used by
// wrappers that must act ahead of every network call.
func (q *QueryBuilder) WithBefore(fn func() error) *QueryBuilder {
	q.before = fn
	return q
}

// Select sets the columns to return and marks the query as a read.
func (q *QueryBuilder) Select(columns string) *QueryBuilder {
	if columns == "" {
		columns = "*"
	}
	q.method = http.MethodGet
	q.params.Set("select", columns)
	return q
}

// Insert sets rows to insert. Pass a struct, map, or slice of either.
func (q *QueryBuilder) Insert(rows any) *QueryBuilder {
	q.method = http.MethodPost
	q.body = rows
	q.prefer = append(q.prefer, "return=representation")
	return q
}

// Upsert inserts rows, resolving conflicts by merging duplicates.
func (q *QueryBuilder) Upsert(rows any) *QueryBuilder {
	q.method = http.MethodPost
	q.body = rows
	q.prefer = append(q.prefer, "return=representation", "resolution=merge-duplicates")
	return q
}

// Update sets the values to apply to rows matched by the filters.
func (q *QueryBuilder) Update(values any) *QueryBuilder {
	q.method = http.MethodPatch
	q.body = values
	q.prefer = append(q.prefer, "return=representation")
	return q
}

// Delete marks the matched rows for deletion.
func (q *QueryBuilder) Delete() *QueryBuilder {
	q.method = http.MethodDelete
	return q
}

func (q *QueryBuilder) filter(column, op string, value any) *QueryBuilder {
	if strings.TrimSpace(column) == "" {
		if q.err == nil {
			q.err = fmt.Errorf("backend: filter column required")
		}
		return q
	}
	q.params.Add(column, fmt.Sprintf("%s.%v", op, value))
	return q
}

// Eq filters rows where column equals value.
func (q *QueryBuilder) Eq(column string, value any) *QueryBuilder {
	return q.filter(column, "eq", value)
}

// Neq filters rows where column does not equal value.
func (q *QueryBuilder) Neq(column string, value any) *QueryBuilder {
	return q.filter(column, "neq", value)
}

// Gt filters rows where column is greater than value.
func (q *QueryBuilder) Gt(column string, value any) *QueryBuilder {
	return q.filter(column, "gt", value)
}

// Gte filters rows where column is greater than or equal to value.
func (q *QueryBuilder) Gte(column string, value any) *QueryBuilder {
	return q.filter(column, "gte", value)
}

// Lt filters rows where column is less than value.
func (q *QueryBuilder) Lt(column string, value any) *QueryBuilder {
	return q.filter(column, "lt", value)
}

// Lte filters rows where column is less than or equal to value.
func (q *QueryBuilder) Lte(column string, value any) *QueryBuilder {
	return q.filter(column, "lte", value)
}

// Like filters rows where column matches the SQL LIKE pattern.
func (q *QueryBuilder) Like(column, pattern string) *QueryBuilder {
	return q.filter(column, "like", pattern)
}

// Is filters rows with IS semantics (null, true, false).
func (q *QueryBuilder) Is(column string, value any) *QueryBuilder {
	return q.filter(column, "is", value)
}

// In filters rows where column is one of values.
func (q *QueryBuilder) In(column string, values ...any) *QueryBuilder {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprintf("%v", v)
	}
	return q.filter(column, "in", "("+strings.Join(parts, ",")+")")
}

// Order sorts the result by column.
func (q *QueryBuilder) Order(column string, ascending bool) *QueryBuilder {
	dir := "desc"
	if ascending {
		dir = "asc"
	}
	q.params.Add("order", column+"."+dir)
	return q
}

// Limit caps the number of returned rows.
func (q *QueryBuilder) Limit(n int) *QueryBuilder {
	q.params.Set("limit", fmt.Sprintf("%d", n))
	return q
}

// Offset skips the first n rows.
func (q *QueryBuilder) Offset(n int) *QueryBuilder {
	q.params.Set("offset", fmt.Sprintf("%d", n))
	return q
}

// Single asks PostgREST to return exactly one object instead of an array.
func (q *QueryBuilder) Single() *QueryBuilder {
	q.prefer = append(q.prefer, "return=representation")
	q.params.Set("limit", "1")
	q.single = true
	return q
}

// Execute sends the accumulated request and decodes the JSON response into
// out (nil to discard the body).
func (q *QueryBuilder) Execute(ctx context.Context, out any) error {
	if q.err != nil {
		return q.err
	}
	if q.before != nil {
		if err := q.before(); err != nil {
			return err
		}
	}
	path := q.path
	if encoded := q.params.Encode(); encoded != "" {
		path += "?" + encoded
	}
	req, err := q.client.newJSONRequest(ctx, q.method, path, q.body)
	if err != nil {
		return err
	}
	if len(q.prefer) > 0 {
		req.Header.Set(headers.Prefer, strings.Join(q.prefer, ","))
	}
	if q.single {
		req.Header.Set("Accept", "application/vnd.pgrst.object+json")
	}
	if q.schema != "" && q.schema != "public" {
		if q.method == http.MethodGet || q.method == http.MethodHead {
			req.Header.Set(headers.AcceptProfile, q.schema)
		} else {
			req.Header.Set(headers.ContentProfile, q.schema)
		}
	}
	return q.client.sendJSON(req, out)
}
