package crunch

import (
	"encoding/binary"
	"encoding/json"
	"encoding/xml"
	"io"
	"strconv"
)

// Descriptor writers. All three formats carry the same records: one entry
// per atlas page, one entry per placement. Duplicates are listed like any
// other image, pointing at the coordinates of the placement whose pixels
// they share. The frame fields appear only when trimming was enabled, the
// rotation field only when rotation was enabled.

type xmlAtlas struct {
	XMLName  xml.Name     `xml:"atlas"`
	Textures []xmlTexture `xml:"tex"`
}

type xmlTexture struct {
	Name   string     `xml:"n,attr"`
	Images []xmlImage `xml:"img"`
}

type xmlImage struct {
	Name    string `xml:"n,attr"`
	X       int    `xml:"x,attr"`
	Y       int    `xml:"y,attr"`
	W       int    `xml:"w,attr"`
	H       int    `xml:"h,attr"`
	FrameX  *int   `xml:"fx,attr,omitempty"`
	FrameY  *int   `xml:"fy,attr,omitempty"`
	FrameW  *int   `xml:"fw,attr,omitempty"`
	FrameH  *int   `xml:"fh,attr,omitempty"`
	Rotated *int   `xml:"r,attr,omitempty"`
}

func writeXML(w io.Writer, name string, packers []*Packer, opts Options) error {
	doc := xmlAtlas{}
	for i, p := range packers {
		tex := xmlTexture{Name: name + strconv.Itoa(i)}
		for j, b := range p.Bitmaps {
			pt := p.Points[j]
			img := xmlImage{Name: b.Name, X: pt.X, Y: pt.Y, W: b.Width, H: b.Height}
			if opts.Trim {
				img.FrameX = &b.FrameX
				img.FrameY = &b.FrameY
				img.FrameW = &b.FrameW
				img.FrameH = &b.FrameH
			}
			if opts.Rotate {
				r := 0
				if pt.Rotated {
					r = 1
				}
				img.Rotated = &r
			}
			tex.Images = append(tex.Images, img)
		}
		doc.Textures = append(doc.Textures, tex)
	}

	enc := xml.NewEncoder(w)
	enc.Indent("", "\t")
	return enc.Encode(doc)
}

type jsonAtlas struct {
	Textures []jsonTexture `json:"textures"`
}

type jsonTexture struct {
	Name   string      `json:"name"`
	Images []jsonImage `json:"images"`
}

type jsonImage struct {
	Name    string `json:"n"`
	X       int    `json:"x"`
	Y       int    `json:"y"`
	W       int    `json:"w"`
	H       int    `json:"h"`
	FrameX  *int   `json:"fx,omitempty"`
	FrameY  *int   `json:"fy,omitempty"`
	FrameW  *int   `json:"fw,omitempty"`
	FrameH  *int   `json:"fh,omitempty"`
	Rotated *bool  `json:"r,omitempty"`
}

func writeJSON(w io.Writer, name string, packers []*Packer, opts Options) error {
	doc := jsonAtlas{Textures: []jsonTexture{}}
	for i, p := range packers {
		tex := jsonTexture{Name: name + strconv.Itoa(i), Images: []jsonImage{}}
		for j, b := range p.Bitmaps {
			pt := p.Points[j]
			img := jsonImage{Name: b.Name, X: pt.X, Y: pt.Y, W: b.Width, H: b.Height}
			if opts.Trim {
				img.FrameX = &b.FrameX
				img.FrameY = &b.FrameY
				img.FrameW = &b.FrameW
				img.FrameH = &b.FrameH
			}
			if opts.Rotate {
				r := pt.Rotated
				img.Rotated = &r
			}
			tex.Images = append(tex.Images, img)
		}
		doc.Textures = append(doc.Textures, tex)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "\t")
	return enc.Encode(doc)
}

// writeBin emits the little-endian binary layout:
//
//	int16 num_atlases
//	repeat: string atlas_name, int16 num_images
//	  repeat: string img_name, int16 x y w h
//	          [int16 fx fy fw fh]  when trimming
//	          [byte rotated]       when rotation is enabled
//
// Strings are int16-length-prefixed.
func writeBin(w io.Writer, name string, packers []*Packer, opts Options) error {
	if err := writeInt16(w, int16(len(packers))); err != nil {
		return err
	}
	for i, p := range packers {
		if err := writeString(w, name+strconv.Itoa(i)); err != nil {
			return err
		}
		if err := writeInt16(w, int16(len(p.Bitmaps))); err != nil {
			return err
		}
		for j, b := range p.Bitmaps {
			pt := p.Points[j]
			if err := writeString(w, b.Name); err != nil {
				return err
			}
			fields := []int{pt.X, pt.Y, b.Width, b.Height}
			if opts.Trim {
				fields = append(fields, b.FrameX, b.FrameY, b.FrameW, b.FrameH)
			}
			for _, v := range fields {
				if err := writeInt16(w, int16(v)); err != nil {
					return err
				}
			}
			if opts.Rotate {
				rot := byte(0)
				if pt.Rotated {
					rot = 1
				}
				if _, err := w.Write([]byte{rot}); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func writeInt16(w io.Writer, v int16) error {
	return binary.Write(w, binary.LittleEndian, v)
}

func writeString(w io.Writer, s string) error {
	if err := writeInt16(w, int16(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}
