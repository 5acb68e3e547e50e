package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/ironsheep/sprite-tools-mcp/internal/batch"
	"github.com/ironsheep/sprite-tools-mcp/internal/chromakey"
	"github.com/ironsheep/sprite-tools-mcp/internal/imaging"
	"github.com/ironsheep/sprite-tools-mcp/internal/palette"
)

// errInvalidParams marks argument errors. They are reported with the
// JSON-RPC invalid params code instead of as tool failures.
var errInvalidParams = errors.New("invalid params")

func invalidParams(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", errInvalidParams, fmt.Sprintf(format, args...))
}

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "sprite_remove_background").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Argument errors return -32602; tool execution errors return -32000 with
// the Go error in data.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, codeInvalidParams, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		s.debugf("tool %s failed: %v", params.Name, err)
		if errors.Is(err, errInvalidParams) || errors.Is(err, chromakey.ErrInvalidOptions) {
			return s.errorResponse(req.ID, codeInvalidParams, "Invalid params", err.Error())
		}
		return s.errorResponse(req.ID, codeToolFailed, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	if len(args) == 0 || string(args) == "null" {
		args = json.RawMessage("{}")
	}

	switch name {
	case "image_load":
		return s.handleImageLoad(args)
	case "image_sample_color":
		return s.handleImageSampleColor(args)

	case "sprite_detect_background":
		return s.handleDetectBackground(args)
	case "sprite_remove_background":
		return s.handleRemoveBackground(args)
	case "sprite_process_directory":
		return s.handleProcessDirectory(ctx, args)
	case "sprite_compose_sheet":
		return s.handleComposeSheet(args)
	case "sprite_palette":
		return s.handlePalette(args)

	default:
		return nil, invalidParams("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	e := &MCPError{Code: code, Message: message}
	if data != "" {
		e.Data = data
	}
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error:   e,
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

func decodeArgs(args json.RawMessage, v interface{}) error {
	if err := json.Unmarshal(args, v); err != nil {
		return fmt.Errorf("%w: %v", errInvalidParams, err)
	}
	return nil
}

// keyArgs are the optional background removal overrides shared by the
// processing tools. Nil fields keep the configured default.
type keyArgs struct {
	Tolerance    *float64 `json:"tolerance"`
	EdgeSize     *int     `json:"edge_size"`
	SamplePoints *int     `json:"sample_points"`
	AutoCrop     *bool    `json:"auto_crop"`
	Padding      *int     `json:"padding"`
	GreenBoost   *bool    `json:"green_boost"`
}

func (a keyArgs) apply(o chromakey.Options) chromakey.Options {
	if a.Tolerance != nil {
		o.Tolerance = *a.Tolerance
	}
	if a.EdgeSize != nil {
		o.EdgeSize = *a.EdgeSize
	}
	if a.SamplePoints != nil {
		o.SamplePoints = *a.SamplePoints
	}
	if a.AutoCrop != nil {
		o.AutoCrop = *a.AutoCrop
	}
	if a.Padding != nil {
		o.Padding = *a.Padding
	}
	if a.GreenBoost != nil {
		o.GreenBoost = *a.GreenBoost
	}
	return o
}

// === Image Information Handlers ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, invalidParams("path is required")
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

type imageSampleColorArgs struct {
	Path   string                 `json:"path"`
	X      *int                   `json:"x"`
	Y      *int                   `json:"y"`
	Points []imaging.LabeledPoint `json:"points"`
}

func (s *Server) handleImageSampleColor(args json.RawMessage) (interface{}, error) {
	var a imageSampleColorArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, invalidParams("path is required")
	}
	if len(a.Points) == 0 && (a.X == nil || a.Y == nil) {
		return nil, invalidParams("either x and y or points are required")
	}

	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	if len(a.Points) > 0 {
		return imaging.SampleColorsMulti(img, a.Points)
	}
	return imaging.SampleColor(img, *a.X, *a.Y)
}

// === Background Removal Handlers ===

type detectBackgroundArgs struct {
	Path         string `json:"path"`
	EdgeSize     *int   `json:"edge_size"`
	SamplePoints *int   `json:"sample_points"`
}

type edgeSample struct {
	Edge  string        `json:"edge"`
	Hex   string        `json:"hex"`
	RGB   chromakey.RGB `json:"rgb"`
	Count int           `json:"count"`
}

type backgroundColor struct {
	Hex      string        `json:"hex"`
	RGB      chromakey.RGB `json:"rgb"`
	Greenish bool          `json:"greenish"`
}

type detectBackgroundResult struct {
	Path         string            `json:"path"`
	Width        int               `json:"width"`
	Height       int               `json:"height"`
	EdgeSize     int               `json:"edge_size"`
	SamplePoints int               `json:"sample_points"`
	Samples      []edgeSample      `json:"samples"`
	Background   []backgroundColor `json:"background"`
}

func (s *Server) handleDetectBackground(args json.RawMessage) (interface{}, error) {
	var a detectBackgroundArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, invalidParams("path is required")
	}

	opts := keyArgs{EdgeSize: a.EdgeSize, SamplePoints: a.SamplePoints}.apply(s.cfg.Defaults)
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	r := chromakey.NewRaster(img)
	samples := chromakey.SampleEdges(r, opts.EdgeSize, opts.SamplePoints)
	set := chromakey.Cluster(samples)

	res := detectBackgroundResult{
		Path:         a.Path,
		Width:        r.W,
		Height:       r.H,
		EdgeSize:     opts.EdgeSize,
		SamplePoints: opts.SamplePoints,
		Samples:      make([]edgeSample, 0, len(samples)),
		Background:   make([]backgroundColor, 0, len(set)),
	}
	for _, sm := range samples {
		res.Samples = append(res.Samples, edgeSample{
			Edge:  sm.Edge.String(),
			Hex:   sm.Color.Hex(),
			RGB:   sm.Color,
			Count: sm.Count,
		})
	}
	for _, c := range set {
		res.Background = append(res.Background, backgroundColor{
			Hex:      c.Hex(),
			RGB:      c,
			Greenish: chromakey.IsGreenish(c),
		})
	}
	return res, nil
}

type removeBackgroundArgs struct {
	Input  string `json:"input"`
	Output string `json:"output"`
	keyArgs
}

func (s *Server) handleRemoveBackground(args json.RawMessage) (interface{}, error) {
	var a removeBackgroundArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Input == "" {
		return nil, invalidParams("input is required")
	}

	res, err := batch.ProcessFile(a.Input, a.Output, a.apply(s.cfg.Defaults))
	if err != nil {
		return nil, err
	}
	s.cache.Evict(res.Output)
	s.debugf("keyed %s -> %s (%.1f%% removed)", res.Input, res.Output, res.RemovedPercent)
	return res, nil
}

type processDirectoryArgs struct {
	InputDir  string `json:"input_dir"`
	OutputDir string `json:"output_dir"`
	Workers   *int   `json:"workers"`
	keyArgs
}

func (s *Server) handleProcessDirectory(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a processDirectoryArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.InputDir == "" {
		return nil, invalidParams("input_dir is required")
	}

	workers := s.cfg.Workers
	if a.Workers != nil {
		if *a.Workers < 0 {
			return nil, invalidParams("workers must not be negative")
		}
		workers = *a.Workers
	}

	summary, err := batch.ProcessDirectory(ctx, a.InputDir, batch.Options{
		OutputDir: a.OutputDir,
		Workers:   workers,
		Job:       a.apply(s.cfg.Defaults),
		Progress: func(done, total int, r batch.JobResult) {
			if !r.OK {
				s.debugf("[%d/%d] %s failed: %s", done, total, r.File, r.Error)
				return
			}
			s.debugf("[%d/%d] %s -> %s", done, total, r.File, r.Output)
		},
	})
	if err != nil {
		return nil, err
	}
	for _, r := range summary.Results {
		s.cache.Evict(r.Output)
	}
	return summary, nil
}

// === Sheet and Palette Handlers ===

type composeSheetArgs struct {
	InputDir      string   `json:"input_dir"`
	Files         []string `json:"files"`
	Output        string   `json:"output"`
	IncludeBase64 bool     `json:"include_base64"`
	imaging.SheetOptions
}

type composeSheetResult struct {
	Output      string              `json:"output,omitempty"`
	Width       int                 `json:"width"`
	Height      int                 `json:"height"`
	CellWidth   int                 `json:"cell_width"`
	CellHeight  int                 `json:"cell_height"`
	Columns     int                 `json:"columns"`
	Rows        int                 `json:"rows"`
	FrameCount  int                 `json:"frame_count"`
	Frames      []imaging.FrameCell `json:"frames"`
	ImageBase64 string              `json:"image_base64,omitempty"`
}

func (s *Server) handleComposeSheet(args json.RawMessage) (interface{}, error) {
	var a composeSheetArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}

	var (
		frames []imaging.Frame
		err    error
	)
	switch {
	case a.InputDir != "" && len(a.Files) > 0:
		return nil, invalidParams("input_dir and files are mutually exclusive")
	case a.InputDir != "":
		frames, err = imaging.LoadFrames(a.InputDir)
	case len(a.Files) > 0:
		frames, err = imaging.LoadFrameFiles(a.Files)
	default:
		return nil, invalidParams("input_dir or files is required")
	}
	if err != nil {
		return nil, err
	}

	output := a.Output
	if output == "" && !a.IncludeBase64 {
		if a.InputDir == "" {
			return nil, invalidParams("output is required when composing a file list")
		}
		output = filepath.Clean(a.InputDir) + "_sheet.png"
	}

	sheet, err := imaging.ComposeSheet(frames, a.SheetOptions)
	if err != nil {
		if errors.Is(err, imaging.ErrNoFrames) {
			return nil, err
		}
		return nil, invalidParams("%v", err)
	}

	b := sheet.Image.Bounds()
	res := composeSheetResult{
		Output:     output,
		Width:      b.Dx(),
		Height:     b.Dy(),
		CellWidth:  sheet.Cell.X,
		CellHeight: sheet.Cell.Y,
		Columns:    sheet.Columns,
		Rows:       sheet.Rows,
		FrameCount: len(sheet.Frames),
		Frames:     sheet.Frames,
	}

	if output != "" {
		if err := imaging.SavePNG(output, sheet.Image); err != nil {
			return nil, err
		}
		s.cache.Evict(output)
	}
	if a.IncludeBase64 {
		res.ImageBase64, err = imaging.EncodeBase64PNG(sheet.Image)
		if err != nil {
			return nil, err
		}
	}
	s.debugf("composed %d frames into %dx%d sheet", res.FrameCount, res.Width, res.Height)
	return res, nil
}

type paletteArgs struct {
	Path   string         `json:"path"`
	Count  int            `json:"count"`
	Method palette.Method `json:"method"`
}

type paletteResult struct {
	Path     string           `json:"path"`
	Method   palette.Method   `json:"method"`
	Swatches []palette.Swatch `json:"swatches"`
}

func (s *Server) handlePalette(args json.RawMessage) (interface{}, error) {
	var a paletteArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, invalidParams("path is required")
	}
	if a.Count == 0 {
		a.Count = palette.DefaultCount
	}
	switch a.Method {
	case "":
		a.Method = palette.MethodDominant
	case palette.MethodDominant, palette.MethodKMeans, palette.MethodHistogram:
	default:
		return nil, invalidParams("unknown palette method %q", a.Method)
	}
	if a.Count < 0|| a.Count > palette.MaxCount {
		return nil, invalidParams("count must be between 1 and %d", palette.MaxCount)
	}

	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	swatches, err := palette.Extract(img, a.Count, a.Method)
	if err != nil {
		return nil, err
	}
	return paletteResult{Path: a.Path, Method: a.Method, Swatches: swatches}, nil
}
