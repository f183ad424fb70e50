// Package qr renders verification QR images for issued codes.
//
// The core store emits only the code id; this package owns URL
// construction ({baseURL}/{id}) and the PNG artifact written next to the
// data directory.
package qr
