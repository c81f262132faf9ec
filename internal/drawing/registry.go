package drawing

import (
	"context"
	"image"
	"runtime"

	"github.com/sirupsen/logrus"
	"golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"

	"github.com/chihwayi/ecd-materials-generator-sub001/internal/material"
)

type RegistryConfig struct {
	// Backing resolution of full-surface drawing elements.
	Width  int
	Height int
	Logger *logrus.Logger
}

// Registry owns one Surface per drawing element of the open document.
type Registry struct {
	config   RegistryConfig
	log      *logrus.Logger
	surfaces map[string]*Surface
	// whether each surface was mounted at full-surface resolution
	full map[string]bool
	// snapshots waiting for Decode, keyed by element id
	pending map[string]string
}

func NewRegistry(config RegistryConfig) *Registry {
	if config.Logger == nil {
		config.Logger = logrus.New()
	}
	if config.Width <= 0 {
		config.Width = 800
	}
	if config.Height <= 0 {
		config.Height = 600
	}
	return &Registry{
		config:   config,
		log:      config.Logger,
		surfaces: make(map[string]*Surface),
		full:     make(map[string]bool),
		pending:  make(map[string]string),
	}
}

func (r *Registry) Surface(id string) (*Surface, bool) {
	s, ok := r.surfaces[id]
	return s, ok
}

func (r *Registry) Len() int {
	return len(r.surfaces)
}

// Mount creates surfaces for drawing elements of doc that have none yet and
// drops surfaces whose element is gone. An element with a snapshot starts
// blank and is queued for Decode; one without gets its outline guide. A
// surface whose element gained or lost full-surface layout is remounted at
// the new resolution.
func (r *Registry) Mount(doc *material.Document) {
	live := make(map[string]struct{})
	for _, el := range doc.Elements() {
		if !el.Kind.IsDrawing() {
			continue
		}
		live[el.ID] = struct{}{}
		if old, ok := r.surfaces[el.ID]; ok {
			if r.full[el.ID] != el.FullSurface() {
				r.surfaces[el.ID] = r.remount(el, old)
				r.full[el.ID] = el.FullSurface()
			}
			continue
		}
		s := NewSurface(r.resolution(el))
		r.surfaces[el.ID] = s
		r.full[el.ID] = el.FullSurface()

		c, _ := el.Content.(*material.DrawingContent)
		if c != nil && c.CanvasData != "" {
			r.pending[el.ID] = c.CanvasData
			continue
		}
		s.DrawOutline(instructionsOf(el))
	}
	for id := range r.surfaces {
		if _, ok := live[id]; !ok {
			delete(r.surfaces, id)
			delete(r.full, id)
			delete(r.pending, id)
		}
	}
}

// remount returns a surface at el's current resolution carrying over what
// old shows. Strokes are rescaled; an untouched outline guide is redrawn.
func (r *Registry) remount(el material.Element, old *Surface) *Surface {
	s := NewSurface(r.resolution(el))
	if _, queued := r.pending[el.ID]; queued {
		return s
	}
	if old.Outline() != "" && !old.Painted() {
		s.DrawOutline(instructionsOf(el))
		return s
	}
	b := s.img.Bounds()
	uri, err := old.Snapshot()
	if err == nil {
		var img *image.RGBA
		if img, err = DecodeSnapshot(uri, b.Dx(), b.Dy()); err == nil {
			s.load(img)
			return s
		}
	}
	r.log.WithError(err).WithField("element", el.ID).Warn("Could not rescale drawing surface")
	s.DrawOutline(instructionsOf(el))
	return s
}

func instructionsOf(el material.Element) string {
	if c, ok := el.Content.(*material.DrawingContent); ok {
		return c.Instructions
	}
	return ""
}

// resolution is the configured surface size for a full-surface element and
// the element's own size otherwise.
func (r *Registry) resolution(el material.Element) (int, int) {
	if el.FullSurface() {
		return r.config.Width, r.config.Height
	}
	return int(el.Size.Width), int(el.Size.Height)
}

// Decoded is the outcome of decoding one element's snapshot.
type Decoded struct {
	ElementID    string
	Instructions string
	Image        *image.RGBA
	Err          error
}

type decodeJob struct {
	id            string
	uri           string
	width, height int
}

// Decode decodes every queued snapshot concurrently. It must be called on
// the event loop, but the returned func does the work and is safe to run on
// any goroutine; hand its results to Apply.
func (r *Registry) Decode(doc *material.Document) func(ctx context.Context) ([]Decoded, error) {
	var jobs []decodeJob
	instructions := make(map[string]string)
	for id, uri := range r.pending {
		s := r.surfaces[id]
		size := s.Size()
		jobs = append(jobs, decodeJob{id: id, uri: uri, width: int(size.Width), height: int(size.Height)})
		if el, ok := doc.Element(id); ok {
			if c, ok := el.Content.(*material.DrawingContent); ok {
				instructions[id] = c.Instructions
			}
		}
	}
	clear(r.pending)

	return func(ctx context.Context) ([]Decoded, error) {
		results := make([]Decoded, len(jobs))
		g, ctx := errgroup.WithContext(ctx)
		g.SetLimit(runtime.NumCPU())
		for i, job := range jobs {
			g.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}
				img, err := DecodeSnapshot(job.uri, job.width, job.height)
				results[i] = Decoded{
					ElementID:    job.id,
					Instructions: instructions[job.id],
					Image:        img,
					Err:          err,
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		return results, nil
	}
}

// Apply installs decoded snapshots. A surface painted on since it was
// mounted keeps the user's strokes. A snapshot that failed to decode falls
// back to the outline guide.
func (r *Registry) Apply(results []Decoded) {
	for _, res := range results {
		s, ok := r.surfaces[res.ElementID]
		if !ok || s.Painted() {
			continue
		}
		if res.Err == nil && res.Image != nil && res.Image.Bounds() != s.img.Bounds() {
			// the surface was remounted while the decode was running
			scaled := image.NewRGBA(s.img.Bounds())
			draw.CatmullRom.Scale(scaled, scaled.Bounds(), res.Image, res.Image.Bounds(), draw.Src, nil)
			res.Image = scaled
		}
		if res.Err != nil || res.Image == nil {
			r.log.WithFields(logrus.Fields{
				"element": res.ElementID,
			}).Warnf("Falling back to outline guide: %v", res.Err)
			s.Clear()
			s.DrawOutline(res.Instructions)
			continue
		}
		s.load(res.Image)
	}
}

// Reset drops every surface, e.g. when another document is opened.
func (r *Registry) Reset() {
	clear(r.surfaces)
	clear(r.full)
	clear(r.pending)
}
