package design

// Orientation is the placement orientation of an instance
type Orientation int

// Instance orientations
const (
	OrientationR0    Orientation = iota // rotate 0 degrees
	OrientationR90                      // rotate 90 degrees
	OrientationR180                     // rotate 180 degrees
	OrientationR270                     // rotate 270 degrees
	OrientationMY                       // mirror about the Y axis
	OrientationMYR90                    // mirror about the Y axis, then rotate 90 degrees
	OrientationMX                       // mirror about the X axis
	OrientationMXR90                    // mirror about the X axis, then rotate 90 degrees
)

var orientationNames = [...]string{"R0", "R90", "R180", "R270", "MY", "MYR90", "MX", "MXR90"}

// Valid reports whether o is one of the eight defined orientations.
func (o Orientation) Valid() bool {
	return o >= OrientationR0 && o <= OrientationMXR90
}

func (o Orientation) String() string {
	if !o.Valid() {
		return "Unknown"
	}
	return orientationNames[o]
}

// ParseOrientation maps a DEF orientation keyword (R0, R90, N, FS...) to an Orientation.
func ParseOrientation(s string) (Orientation, bool) {
	switch s {
	case "R0", "N":
		return OrientationR0, true
	case "R90", "W":
		return OrientationR90, true
	case "R180", "S":
		return OrientationR180, true
	case "R270", "E":
		return OrientationR270, true
	case "MY", "FN":
		return OrientationMY, true
	case "MYR90", "FE":
		return OrientationMYR90, true
	case "MX", "FS":
		return OrientationMX, true
	case "MXR90", "FW":
		return OrientationMXR90, true
	}
	return 0, false
}

// IoType is the signal direction of a pin or port
type IoType int

const (
	IoInput IoType = iota
	IoOutput
	IoInOut
	IoFeedThru
)

func (t IoType) String() string {
	switch t {
	case IoInput:
		return "INPUT"
	case IoOutput:
		return "OUTPUT"
	case IoInOut:
		return "INOUT"
	case IoFeedThru:
		return "FEEDTHRU"
	}
	return "Unknown"
}

// LayerType is the technology type of a layer
type LayerType int

const (
	LayerRouting LayerType = iota
	LayerCut
	LayerMasterslice
	LayerOverlap
	LayerImplant
	LayerNone
)

func (t LayerType) String() string {
	switch t {
	case LayerRouting:
		return "ROUTING"
	case LayerCut:
		return "CUT"
	case LayerMasterslice:
		return "MASTERSLICE"
	case LayerOverlap:
		return "OVERLAP"
	case LayerImplant:
		return "IMPLANT"
	}
	return "NONE"
}

// Direction is the preferred routing direction of a layer or row
type Direction int

const (
	DirectionNone Direction = iota
	DirectionHorizontal
	DirectionVertical
)

func (d Direction) String() string {
	switch d {
	case DirectionHorizontal:
		return "HORIZONTAL"
	case DirectionVertical:
		return "VERTICAL"
	}
	return "NONE"
}

// EdgeType classifies a routed net edge
type EdgeType int

const (
	EdgeSegment EdgeType = iota
	EdgeTechVia
	EdgeVia
	EdgeShort
	EdgeVWire
)

func (t EdgeType) String() string {
	switch t {
	case EdgeSegment:
		return "SEGMENT"
	case EdgeTechVia:
		return "TECHVIA"
	case EdgeVia:
		return "VIA"
	case EdgeShort:
		return "SHORT"
	case EdgeVWire:
		return "VWIRE"
	}
	return "Unknown"
}

// MasterType is the class of a cell master
type MasterType int

const (
	MasterBlock MasterType = iota
	MasterCore
	MasterPad
	MasterEndcap
)

func (t MasterType) String() string {
	switch t {
	case MasterBlock:
		return "BLOCK"
	case MasterCore:
		return "CORE"
	case MasterPad:
		return "PAD"
	case MasterEndcap:
		return "ENDCAP"
	}
	return "Unknown"
}

// SignalType is the net class of a pin
type SignalType int

const (
	SignalSignal SignalType = iota
	SignalPower
	SignalGround
	SignalClock
	SignalAnalog
	SignalReset
	SignalScan
	SignalTieOff
)

var signalNames = [...]string{"SIGNAL", "POWER", "GROUND", "CLOCK", "ANALOG", "RESET", "SCAN", "TIEOFF"}

func (t SignalType) String() string {
	if t < SignalSignal || t > SignalTieOff {
		return "Unknown"
	}
	return signalNames[t]
}

// Ref is a non-owning reference to another entity by ID.
// The exporter writes references as {"ID": n, "InComplete": true}; only ID is kept.
type Ref struct {
	ID int
}

// RefID returns the referenced ID and whether r is set.
func RefID(r *Ref) (int, bool) {
	if r == nil {
		return 0, false
	}
	return r.ID, true
}

// Point is an X, Y coordinate in design units
type Point struct {
	X int
	Y int
}

// Rect is an axis-aligned rectangle in design units
type Rect struct {
	ID        int
	XMin      int
	YMin      int
	XMax      int
	YMax      int
	ShapeType int
	Layer     *Ref `json:",omitempty"`
	Via       *Ref `json:",omitempty"`
}

// Width returns the X extent of r.
func (r Rect) Width() int { return r.XMax - r.XMin }

// Height returns the Y extent of r.
func (r Rect) Height() int { return r.YMax - r.YMin }

// Normalized returns r with its corners ordered so that XMin<=XMax and YMin<=YMax.
func (r Rect) Normalized() Rect {
	if r.XMin > r.XMax {
		r.XMin, r.XMax = r.XMax, r.XMin
	}
	if r.YMin > r.YMax {
		r.YMin, r.YMax = r.YMax, r.YMin
	}
	return r
}

// Geometry is a collection of boxes
type Geometry struct {
	ID    int
	Boxes []Rect
}

// Edge is one routed element of a net, either a wire segment or a via
type Edge struct {
	Type  EdgeType
	Rect  *Rect
	Via   *Ref `json:",omitempty"`
	Layer *Ref `json:",omitempty"`
}

// Instance is a placed cell
type Instance struct {
	ID           int
	Name         string `json:",omitempty"`
	Location     *Point `json:",omitempty"`
	Origin       *Point `json:",omitempty"`
	Orientation  Orientation
	Master       string `json:",omitempty"`
	Pins         []Ref  `json:",omitempty"`
	IsPlaced     bool
	BoundingBox  *Rect `json:",omitempty"`
	Halo         *Rect `json:",omitempty"`
	IsFiller     bool
	MasterType   MasterType
	Obstructions *Geometry `json:",omitempty"`
}

// Pin is an instance pin or, with IsBlock set, a design port
type Pin struct {
	ID         int
	Name       string `json:",omitempty"`
	Instance   *Ref   `json:",omitempty"`
	Net        *Ref   `json:",omitempty"`
	Direction  IoType
	Location   *Point `json:",omitempty"`
	Geometries []Ref  `json:",omitempty"`
	SignalType SignalType
	IsBlock    bool
	IsSpecial  bool
}

// Net is a routed or unrouted connection; special nets carry SpecialBoxes instead of Edges
type Net struct {
	ID           int
	Name         string `json:",omitempty"`
	IsSpecial    bool
	IsRouted     bool
	Pins         []Ref  `json:",omitempty"`
	Edges        []Edge `json:",omitempty"`
	SpecialBoxes []Ref  `json:",omitempty"`
}

// Layer is a technology layer
type Layer struct {
	ID         int
	Name       string `json:",omitempty"`
	Alias      string `json:",omitempty"`
	Width      int
	Spacing    int
	Area       float64
	Type       LayerType
	Direction  Direction
	UpperLayer *Ref `json:",omitempty"`
	LowerLayer *Ref `json:",omitempty"`
}

// Via is a via definition or a routing via
type Via struct {
	ID          int
	Name        string `json:",omitempty"`
	Rect        *Rect  `json:",omitempty"`
	TopLayer    *Ref   `json:",omitempty"`
	CutLayer    *Ref   `json:",omitempty"`
	BottomLayer *Ref   `json:",omitempty"`
	IsBlock     bool
	IsTech      bool
}

// DrawLayer returns the layer a via is drawn on: cut, then bottom, then top.
func (v *Via) DrawLayer() (int, bool) {
	for _, r := range []*Ref{v.CutLayer, v.BottomLayer, v.TopLayer} {
		if id, ok := RefID(r); ok {
			return id, true
		}
	}
	return 0, false
}

// Site is a placement site
type Site struct {
	ID   int
	Name string `json:",omitempty"`
}

// Grid describes a track grid or the gcell grid
type Grid struct {
	ID                     int
	Layer                  *Ref `json:",omitempty"`
	GridX                  []int
	GridY                  []int
	GridXPatternOrigins    []int
	GridXPatternLineCounts []int
	GridXPatternSteps      []int
	GridYPatternOrigins    []int
	GridYPatternLineCounts []int
	GridYPatternSteps      []int
}

// Row is a placement row
type Row struct {
	ID          int
	Name        string `json:",omitempty"`
	Site        *Ref   `json:",omitempty"`
	Direction   Direction
	Orientation Orientation
	OriginX     int
	OriginY     int
	Spacing     int
	BoundingBox *Rect
}

// Design is a parsed LEF/DEF design. It is treated as immutable once loaded.
type Design struct {
	Name           string
	Instances      []Instance
	Nets           []Net
	InstancePins   []Pin
	BlockPins      []Pin
	RoutingVias    []Via
	ViaDefinitions []Via
	Layers         []Layer
	CoreArea       float64
	DieArea        float64
	DesignArea     float64
	Utilization    float64
	BoundingBox    *Rect
	Core           *Rect
	Die            *Rect
	Rows           []Row
	Tracks         []Grid
	Sites          []Site
	GCell          *Grid
	Geometries     []Geometry
}
