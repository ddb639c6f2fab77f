package ifc

import "strings"

// Entity type names used by the viewer. STEP stores them upper-case.
const (
	TypeProject              = "IFCPROJECT"
	TypeBuilding             = "IFCBUILDING"
	TypeBuildingStorey       = "IFCBUILDINGSTOREY"
	TypeSpace                = "IFCSPACE"
	TypeWall                 = "IFCWALL"
	TypeWallStandardCase     = "IFCWALLSTANDARDCASE"
	TypeSlab                 = "IFCSLAB"
	TypeDoor                 = "IFCDOOR"
	TypeWindow               = "IFCWINDOW"
	TypeStair                = "IFCSTAIR"
	TypeStairFlight          = "IFCSTAIRFLIGHT"
	TypeColumn               = "IFCCOLUMN"
	TypeBeam                 = "IFCBEAM"
	TypeRoof                 = "IFCROOF"
	TypeRailing              = "IFCRAILING"
	TypeCovering             = "IFCCOVERING"
	TypePlate                = "IFCPLATE"
	TypeMember               = "IFCMEMBER"
	TypeCurtainWall          = "IFCCURTAINWALL"
	TypeRamp                 = "IFCRAMP"
	TypeFurnishingElement    = "IFCFURNISHINGELEMENT"
	TypeBuildingElementProxy = "IFCBUILDINGELEMENTPROXY"
	TypeFlowTerminal         = "IFCFLOWTERMINAL"
)

// TypeRelContainedInSpatialStructure links elements to their storey.
const TypeRelContainedInSpatialStructure = "IFCRELCONTAINEDINSPATIALSTRUCTURE"

var elementTypes = map[string]struct{}{
	TypeSpace:                {},
	TypeWall:                 {},
	TypeWallStandardCase:     {},
	TypeSlab:                 {},
	TypeDoor:                 {},
	TypeWindow:               {},
	TypeStair:                {},
	TypeStairFlight:          {},
	TypeColumn:               {},
	TypeBeam:                 {},
	TypeRoof:                 {},
	TypeRailing:              {},
	TypeCovering:             {},
	TypePlate:                {},
	TypeMember:               {},
	TypeCurtainWall:          {},
	TypeRamp:                 {},
	TypeFurnishingElement:    {},
	TypeBuildingElementProxy: {},
	TypeFlowTerminal:         {},
}

// IsElementType reports whether entities of typ are rendered as geometry.
func IsElementType(typ string) bool {
	_, ok := elementTypes[strings.ToUpper(typ)]
	return ok
}
