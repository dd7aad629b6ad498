package memrise

import (
	"memrise-uploader/lib/restyutil"

	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("scrapers/memrise")

// SetRestyInstrumentOutput dumps every request/response pair on this
// client to the given output, useful when the service's markup shifts.
func (c *Client) SetRestyInstrumentOutput(out restyutil.InstrumentOutput) {
	restyutil.InstrumentClient(c.Http, tracer, out)
}
