package captcha

import (
	"bytes"
	"crypto/rand"
	"fmt"
	"math"
	"math/big"
	mrand "math/rand"
	"strconv"
	"strings"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font/gofont/goregular"
)

type Mode string

const (
	ModeRandom Mode = "random"
	ModeMath   Mode = "math"
)

// 去掉易混淆字符 (O, 0, I, 1)
const alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const textLength = 4

// Generator draws challenges onto PNG images.
type Generator struct {
	mode   Mode
	width  int
	height int
	font   *truetype.Font
}

func NewGenerator(mode Mode, width, height int) (*Generator, error) {
	switch mode {
	case ModeRandom, ModeMath:
	case "":
		mode = ModeRandom
	default:
		return nil, fmt.Errorf("unknown captcha mode %q", mode)
	}
	if width <= 0 || height <= 0 {
		width, height = 160, 60
	}
	f, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse captcha font: %w", err)
	}
	return &Generator{mode: mode, width: width, height: height, font: f}, nil
}

// Generate returns the drawn text, the alternate accepted answer and the PNG bytes.
func (g *Generator) Generate() (challenge, response string, png []byte, err error) {
	switch g.mode {
	case ModeMath:
		challenge, response, err = mathChallenge()
	default:
		challenge, err = randomText(textLength)
		response = strings.ToLower(challenge)
	}
	if err != nil {
		return "", "", nil, err
	}

	png, err = g.render(challenge)
	if err != nil {
		return "", "", nil, err
	}
	return challenge, response, png, nil
}

func (g *Generator) render(text string) ([]byte, error) {
	w, h := float64(g.width), float64(g.height)
	dc := gg.NewContext(g.width, g.height)

	dc.SetRGB(0.97, 0.97, 0.97)
	dc.Clear()

	// 背景噪点
	for i := 0; i < g.width*g.height/20; i++ {
		dc.SetRGBA(mrand.Float64(), mrand.Float64(), mrand.Float64(), 0.3)
		dc.DrawPoint(mrand.Float64()*w, mrand.Float64()*h, 1)
		dc.Fill()
	}

	dc.SetFontFace(truetype.NewFace(g.font, &truetype.Options{Size: h * 0.6}))

	n := float64(len(text))
	step := w / (n + 1)
	for i, char := range text {
		fi := float64(i)
		dc.SetRGB(0.1+0.6*fi/n, 0.1+0.5*(n-fi)/n, 0.2+0.5*math.Abs(math.Sin(fi)))

		angle := -0.25 + 0.5*mrand.Float64()
		x := step * (fi + 1)
		y := h/2 + (h/8)*math.Sin(fi)

		dc.RotateAbout(angle, x, y)
		dc.DrawStringAnchored(string(char), x, y, 0.5, 0.5)
		dc.RotateAbout(-angle, x, y)
	}

	// 干扰线
	dc.SetRGBA(0.5, 0.5, 0.5, 0.5)
	dc.SetLineWidth(1)
	for i := 0; i < 4; i++ {
		dc.DrawLine(0, mrand.Float64()*h, w, mrand.Float64()*h)
		dc.Stroke()
	}

	buf := new(bytes.Buffer)
	if err := dc.EncodePNG(buf); err != nil {
		return nil, fmt.Errorf("encode captcha png: %w", err)
	}
	return buf.Bytes(), nil
}

func randomText(length int) (string, error) {
	out := make([]byte, length)
	for i := range out {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(alphabet))))
		if err != nil {
			return "", err
		}
		out[i] = alphabet[n.Int64()]
	}
	return string(out), nil
}

func mathChallenge() (string, string, error) {
	nums := make([]int, 3)
	for i, limit := range []int64{9, 9, 3} {
		n, err := rand.Int(rand.Reader, big.NewInt(limit))
		if err != nil {
			return "", "", err
		}
		nums[i] = int(n.Int64()) + 1
	}
	a, b := nums[0], nums[1]

	var op string
	var result int
	switch nums[2] {
	case 1:
		op, result = "+", a+b
	case 2:
		if a < b {
			a, b = b, a
		}
		op, result = "-", a-b
	default:
		op, result = "*", a*b
	}
	return fmt.Sprintf("%d%s%d=", a, op, b), strconv.Itoa(result), nil
}
