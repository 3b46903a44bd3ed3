package api

import (
	"encoding/json"
	"fmt"

	"github.com/valyala/fasthttp"

	"github.com/oceanfreight/blockvoyage/cmn"
)

func writeJSON(ctx *fasthttp.RequestCtx, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		return
	}
	ctx.SetStatusCode(status)
	ctx.SetContentType("application/json; charset=utf-8")
	ctx.SetBody(data)
}

type errorReply struct {
	Error string `json:"error"`
}

func writeError(ctx *fasthttp.RequestCtx, status int, err error) {
	writeJSON(ctx, status, errorReply{Error: err.Error()})
}

func writeMethodNotAllowed(ctx *fasthttp.RequestCtx, allowed ...string) {
	for _, m := range allowed {
		ctx.Response.Header.Add("Allow", m)
	}
	writeError(ctx, fasthttp.StatusMethodNotAllowed, cmn.NewErrConfig("method not allowed"))
}

func errVoyageNotFound(voyageID string) error {
	return fmt.Errorf("api: no placement recorded for voyage %q", voyageID)
}
