package classifier

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"

	"golang.org/x/image/draw"

	"DROWSY_GUARD/go-monitor/internal/models"
	"DROWSY_GUARD/go-monitor/pkg/pb"
)

// Preprocess decodes a JPEG still and converts it to the model input
// layout: size×size RGB, pixel values in [0,1], flattened HWC.
func Preprocess(frame []byte, size int) (*pb.ImageTensor, error) {
	img, err := jpeg.Decode(bytes.NewReader(frame))
	if err != nil {
		return nil, fmt.Errorf("%w: jpeg decode: %v", models.ErrInference, err)
	}

	resized := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.BiLinear.Scale(resized, resized.Bounds(), img, img.Bounds(), draw.Src, nil)

	data := make([]float32, 0, size*size*3)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			r, g, b, _ := resized.At(x, y).RGBA()
			data = append(data,
				float32(r>>8)/255.0,
				float32(g>>8)/255.0,
				float32(b>>8)/255.0,
			)
		}
	}

	return &pb.ImageTensor{
		Data:     data,
		Width:    int32(size),
		Height:   int32(size),
		Channels: 3,
	}, nil
}
