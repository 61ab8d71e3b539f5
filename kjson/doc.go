// Package kjson implements kJSON, a JSON-superset text format with an
// equivalent compact binary encoding (kJSONB).
//
// kJSON extends the JSON value model with:
//   - BigInt: arbitrary-precision integers (123n)
//   - Decimal128: exact decimal values (99.99m)
//   - UUID: unquoted lowercase 8-4-4-4-12 literals
//   - Instant: nanosecond-precision UTC timestamps (2025-01-10T12:00:00Z)
//   - Duration: nanosecond-precision ISO-8601 spans (PT1H30M)
//   - Binary: raw byte sequences (kJSONB only, no text literal)
//
// The text grammar is JSON5-flavored: single, double, or backtick quoted
// strings, unquoted identifier keys, trailing commas, and // and /* */
// comments are all accepted by default and individually toggleable.
//
// # Dual Encoding
//
// Both encodings share one abstract value model:
//   - kJSON (text): what humans and tools read and write
//   - kJSONB (binary): a type-tagged byte stream for storage and transport
//
// Parse and Stringify convert between text and Values; Encode and Decode
// convert between Values and kJSONB bytes. For any Value v not containing
// Binary, Parse(Stringify(v)) and Decode(Encode(v)) reproduce v.
//
// # Example
//
//	v, err := kjson.Parse(`{
//	  id: 123456789012345678901234567890n,
//	  price: 99.99m,
//	  session: 550e8400-e29b-41d4-a716-446655440000,
//	  created: 2025-01-10T12:00:00Z,
//	}`)
//
// Values are immutable once construction is complete; concurrent reads from
// multiple goroutines are safe without locking.
package kjson
