package fileprocessor

import (
	"bytes"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/oned"
	"github.com/makiuchi-d/gozxing/qrcode"
)

// barcodeReaders is tried in order; the first successful decode wins.
// No barcode library exists anywhere in the retrieval pack, so this is
// an ecosystem addition (DESIGN.md).
func barcodeReaders() []gozxing.Reader {
	return []gozxing.Reader{
		qrcode.NewQRCodeReader(),
		oned.NewEAN13Reader(),
		oned.NewCode128Reader(),
		oned.NewCode39Reader(),
	}
}

// ScanBarcode decodes the first recognisable barcode in raw image bytes,
// per spec.md §4.3 "Barcode scan runs on raw bytes".
func ScanBarcode(imageBytes []byte) (code, format string, ok bool) {
	img, _, err := image.Decode(bytes.NewReader(imageBytes))
	if err != nil {
		return "", "", false
	}
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return "", "", false
	}

	for _, r := range barcodeReaders() {
		result, err := r.Decode(bmp, nil)
		if err != nil || result == nil {
			continue
		}
		return result.GetText(), result.GetBarcodeFormat().String(), true
	}
	return "", "", false
}
