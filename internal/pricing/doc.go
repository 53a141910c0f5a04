// Package pricing turns tile and material line items into carton counts, line costs
// and a single TotalsSummary. Every function is pure; profiles are passed in explicitly.
package pricing
