package assets

// ServiceName is reported to the trace exporter and the HTTP tracing middleware.
const ServiceName = "fcmpush"
