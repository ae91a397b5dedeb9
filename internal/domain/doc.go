// Package domain models river and rain gauge telemetry for the flood
// analytics service.
//
// # Data Source
//
// Gauge networks (river stage, discharge, rainfall and soil moisture probes)
// are polled by an upstream collector, which publishes one flat JSON object
// per observation to the Kafka source topic:
//
//	{"site_id":"01646500","site_name":"Potomac River near Little Falls",
//	 "variable":"stage","value":"4.21","unit":"ft",
//	 "timestamp":"2024-04-26T15:15:00Z","lat":"38.9498","lon":"-77.1276",
//	 "quality":"good"}
//
// All fields are strings because the collector forwards CSV cells verbatim.
//
// # Conventions
//
// Variables:
//
//	water_level    aliases: stage, level, gauge_height      canonical unit m
//	discharge      aliases: flow, streamflow                canonical unit m3/s
//	rainfall       aliases: rain, precip, precipitation     canonical unit mm
//	soil_moisture  aliases: soil, vwc                       canonical unit %
//
// Imperial units are converted on ingest: ft -> m, cfs -> m3/s, in -> mm.
//
// Missing observations:
//
//	Empty cells, "NA", "N/A", "NaN", "null" and the -9999 logger sentinel all
//	mean "no observation". They are kept as readings with a nil Value so that
//	gaps stay visible to timestamp alignment, and are skipped by statistics.
//	Readings flagged "suspect" or "bad" by the collector are treated the same way.
//
// Time:
//
//	Timestamps are RFC 3339. When absent, the Kafka message timestamp is used.
//	Two series are compared by truncating timestamps to a common resolution
//	(see [Align]); within one bucket the latest observation wins.
//
// # ID Generation
//
// Reading IDs are deterministic SHA-256 hashes of site|variable|timestamp, so
// replayed messages overwrite rather than duplicate stored observations.
package domain
