package barcode

import "github.com/mamadbah2/inventaire/internal/domain/models"

// applicationIdentifier is the GS1 AI prefix that wraps the raw EAN so the
// rendering service produces an EAN-128 style Code 128 barcode.
const applicationIdentifier = "(01)"

// Encode derives the symbology payload for a raw EAN. Any non-empty string is
// accepted: no checksum or length validation is performed, matching the
// scanner-driven workflow where codes arrive pre-validated. Empty input is
// rejected upstream before the pipeline runs.
func Encode(rawEAN string) models.EncodedCode {
	return models.EncodedCode{
		RawEAN:  rawEAN,
		Payload: applicationIdentifier + rawEAN,
	}
}
