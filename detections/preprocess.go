package detections

import (
	"image"
	"runtime"
	"sync"

	"golang.org/x/sys/cpu"
)

// Preprocessor converts a resized RGB frame into the CHW float32 layout the
// model expects. Buffers are pooled and padded to a cache line so parallel
// row workers do not share lines while writing.
type Preprocessor struct {
	width, height int
	numWorkers    int
	bufferPool    *sync.Pool
}

type alignedBuffer struct {
	data []float32
	_    cpu.CacheLinePad
}

func NewPreprocessor() *Preprocessor {
	return &Preprocessor{
		width:      InputWidth,
		height:     InputHeight,
		numWorkers: runtime.GOMAXPROCS(0),
		bufferPool: &sync.Pool{
			New: func() interface{} {
				return &alignedBuffer{
					data: make([]float32, InputWidth*InputHeight*3),
				}
			},
		},
	}
}

// Process fills dst with the normalized CHW pixels of img. dst must hold
// width*height*3 floats; img must already be resized to the model input.
func (p *Preprocessor) Process(img image.Image, dst []float32) {
	buffer := p.bufferPool.Get().(*alignedBuffer)
	defer p.bufferPool.Put(buffer)

	switch pic := img.(type) {
	case *image.NRGBA:
		p.processRows(buffer.data, func(y int) []uint8 {
			return pic.Pix[y*pic.Stride:]
		})
	case *image.RGBA:
		p.processRows(buffer.data, func(y int) []uint8 {
			return pic.Pix[y*pic.Stride:]
		})
	default:
		p.processGeneric(img, buffer.data)
	}

	copy(dst, buffer.data)
}

// processRows splits the image into horizontal bands, one per worker, and
// reads 4-byte pixels straight out of the backing slice.
func (p *Preprocessor) processRows(buffer []float32, row func(y int) []uint8) {
	channelSize := p.width * p.height
	rowsPerWorker := p.height / p.numWorkers
	if rowsPerWorker == 0 {
		rowsPerWorker = p.height
	}

	var wg sync.WaitGroup
	for startRow := 0; startRow < p.height; startRow += rowsPerWorker {
		endRow := startRow + rowsPerWorker
		if endRow > p.height {
			endRow = p.height
		}

		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for y := start; y < end; y++ {
				src := row(y)
				offset := y * p.width
				for x := 0; x < p.width; x++ {
					i := offset + x
					buffer[i] = float32(src[x*4]) / 255.0
					buffer[channelSize+i] = float32(src[x*4+1]) / 255.0
					buffer[channelSize*2+i] = float32(src[x*4+2]) / 255.0
				}
			}
		}(startRow, endRow)
	}

	wg.Wait()
}

func (p *Preprocessor) processGeneric(img image.Image, buffer []float32) {
	channelSize := p.width * p.height
	for y := 0; y < p.height; y++ {
		offset := y * p.width
		for x := 0; x < p.width; x++ {
			i := offset + x
			r, g, b, _ := img.At(x, y).RGBA()
			buffer[i] = float32(r>>8) / 255.0
			buffer[channelSize+i] = float32(g>>8) / 255.0
			buffer[channelSize*2+i] = float32(b>>8) / 255.0
		}
	}
}
