package imagestore

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"math"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/dicomtag"
	"github.com/suyashkumar/dicom/element"
)

// DecodeDicom reads the first frame of a single DICOM file into a 16-bit
// grayscale image, scaled so that the brightest pixel is white.
func DecodeDicom(dicomReader io.Reader, nReaderBytes int64) (image.Image, error) {
	parsedData, err := safelyDicomParse(dicomReader, nReaderBytes, dicom.ParseOptions{
		DropPixelData: false,
	})
	if parsedData == nil || err != nil {
		return nil, fmt.Errorf("Error reading dicom: %v", err)
	}

	return imageFromDataSet(parsedData)
}

func imageFromDataSet(parsedData *element.DataSet) (image.Image, error) {
	var imgRows, imgCols int
	var imgPixels []int

	for _, elem := range parsedData.Elements {
		switch elem.Tag {
		case dicomtag.Rows:
			v, err := firstUint16(elem)
			if err != nil {
				return nil, err
			}
			imgRows = v
		case dicomtag.Columns:
			v, err := firstUint16(elem)
			if err != nil {
				return nil, err
			}
			imgCols = v
		}

		if elem.Tag != dicomtag.PixelData {
			continue
		}

		if len(elem.Value) == 0 {
			return nil, fmt.Errorf("pixel data element is empty")
		}

		data, ok := elem.Value[0].(element.PixelDataInfo)
		if !ok {
			return nil, fmt.Errorf("pixel data had unexpected type %T", elem.Value[0])
		}

		for _, frame := range data.Frames {
			if frame.IsEncapsulated() {
				// JPEG or similar inside the DICOM; the library decodes it.
				return frame.GetImage()
			}

			for _, sample := range frame.NativeData.Data {
				if len(sample) == 0 {
					return nil, fmt.Errorf("pixel has no samples")
				}
				imgPixels = append(imgPixels, sample[0])
			}

			// Only the first frame is shown
			break
		}
	}

	if imgRows == 0 || imgCols == 0 || len(imgPixels) == 0 {
		return nil, fmt.Errorf("dicom has no native pixel data")
	}

	// Identify the brightest pixel
	maxIntensity := 0
	for _, v := range imgPixels {
		if v > maxIntensity {
			maxIntensity = v
		}
	}

	img := image.NewGray16(image.Rect(0, 0, imgCols, imgRows))
	for j := 0; j < len(imgPixels) && j < imgRows*imgCols; j++ {
		img.SetGray16(j%imgCols, j/imgCols, color.Gray16{Y: scaleIntensity(imgPixels[j], maxIntensity)})
	}

	return img, nil
}

// firstUint16 reads a US element such as Rows or Columns.
func firstUint16(elem *element.Element) (int, error) {
	if len(elem.Value) == 0 {
		return 0, fmt.Errorf("dicom element %v has no value", elem.Tag)
	}

	v, ok := elem.Value[0].(uint16)
	if !ok {
		return 0, fmt.Errorf("dicom element %v had unexpected type %T", elem.Tag, elem.Value[0])
	}

	return int(v), nil
}

// scaleIntensity maps intensity onto the full 16-bit range, relative to the
// brightest pixel in the image.
func scaleIntensity(intensity, maxIntensity int) uint16 {
	if intensity < 0 || maxIntensity <= 0 {
		return 0
	}

	return uint16(float64(math.MaxUint16) * float64(intensity) / float64(maxIntensity))
}

// safelyDicomParse consumes panics emitted by the dicom library, which are
// inappropriate and must be captured in order to turn them into recoverable
// errors.
func safelyDicomParse(dicomReader io.Reader, nReaderBytes int64, opts dicom.ParseOptions) (parsedData *element.DataSet, err error) {
	defer func() {
		if panicErr := recover(); panicErr != nil {
			err = fmt.Errorf("%v", panicErr)
		}
	}()

	p, err := dicom.NewParser(dicomReader, nReaderBytes, nil)
	if err != nil {
		return nil, err
	}

	return p.Parse(opts)
}
