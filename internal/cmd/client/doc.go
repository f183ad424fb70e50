// Package client provides the `ezraverify` command-line client.
//
// The CLI talks to the EzraVerify HTTP endpoint to issue codes, record
// sales, and check codes from a terminal. It is primarily intended for
// developers and operators.
//
// # Address configuration
//
// The HTTP base URL is discovered by the application that embeds the
// commands via a BaseURLFunc. When using the standalone binary, it
// defaults to http://127.0.0.1:8000 and can be overridden with the
// EZRA_HTTP environment variable.
//
// Usage
//
//	ezraverify code create --date 2026-01-15 --info ALPHA-BRAVO-001
//	ezraverify code sale --id <CODE> --date 2026-02-01
//	ezraverify code verify --id <CODE>
//	ezraverify code list --limit 50
//	ezraverify code list --filter 'scan_count > 3 && !sold'
package client
