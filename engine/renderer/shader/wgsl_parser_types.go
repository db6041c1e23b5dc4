package shader

import "github.com/cogentcore/webgpu/wgpu"

type vertexFormatInfo struct {
	format wgpu.VertexFormat
	size   uint64
}

// wgslTypeLayout is the size and alignment of a host-shareable WGSL type.
type wgslTypeLayout struct {
	size  uint64
	align uint64
}

type parsedField struct {
	name      string
	typeName  string
	location  int
	isBuiltin bool
}

type parsedStruct struct {
	name   string
	fields []parsedField
}

var wgslVertexFormatMap = map[string]vertexFormatInfo{
	"f32":       {wgpu.VertexFormatFloat32, 4},
	"vec2<f32>": {wgpu.VertexFormatFloat32x2, 8},
	"vec3<f32>": {wgpu.VertexFormatFloat32x3, 12},
	"vec4<f32>": {wgpu.VertexFormatFloat32x4, 16},
	"u32":       {wgpu.VertexFormatUint32, 4},
	"vec2<u32>": {wgpu.VertexFormatUint32x2, 8},
	"vec4<u32>": {wgpu.VertexFormatUint32x4, 16},
	"i32":       {wgpu.VertexFormatSint32, 4},
	"vec2<i32>": {wgpu.VertexFormatSint32x2, 8},
	"vec4<i32>": {wgpu.VertexFormatSint32x4, 16},
}

// https://www.w3.org/TR/WGSL/#alignment-and-size
var wgslPrimitiveLayoutMap = map[string]wgslTypeLayout{
	"f32":         {4, 4},
	"i32":         {4, 4},
	"u32":         {4, 4},
	"vec2<f32>":   {8, 8},
	"vec3<f32>":   {12, 16},
	"vec4<f32>":   {16, 16},
	"vec2<u32>":   {8, 8},
	"vec3<u32>":   {12, 16},
	"vec4<u32>":   {16, 16},
	"vec2<i32>":   {8, 8},
	"vec3<i32>":   {12, 16},
	"vec4<i32>":   {16, 16},
	"mat3x3<f32>": {48, 16},
	"mat4x4<f32>": {64, 16},
	"atomic<u32>": {4, 4},
	"atomic<i32>": {4, 4},
}

// short aliases resolve to their long spelling before any table lookup
var wgslTypeAliases = map[string]string{
	"vec2f": "vec2<f32>", "vec3f": "vec3<f32>", "vec4f": "vec4<f32>",
	"vec2u": "vec2<u32>", "vec3u": "vec3<u32>", "vec4u": "vec4<u32>",
	"vec2i": "vec2<i32>", "vec3i": "vec3<i32>", "vec4i": "vec4<i32>",
	"mat3x3f": "mat3x3<f32>", "mat4x4f": "mat4x4<f32>",
}

var wgslTextureDimMap = map[string]wgpu.TextureViewDimension{
	"texture_2d":               wgpu.TextureViewDimension2D,
	"texture_2d_array":         wgpu.TextureViewDimension2DArray,
	"texture_3d":               wgpu.TextureViewDimension3D,
	"texture_cube":             wgpu.TextureViewDimensionCube,
	"texture_multisampled_2d":  wgpu.TextureViewDimension2D,
	"texture_depth_2d":         wgpu.TextureViewDimension2D,
	"texture_depth_2d_array":   wgpu.TextureViewDimension2DArray,
	"texture_depth_cube":       wgpu.TextureViewDimensionCube,
	"texture_storage_2d":       wgpu.TextureViewDimension2D,
	"texture_storage_2d_array": wgpu.TextureViewDimension2DArray,
	"texture_storage_3d":       wgpu.TextureViewDimension3D,
}

var wgslSampleTypeMap = map[string]wgpu.TextureSampleType{
	"f32": wgpu.TextureSampleTypeFloat,
	"i32": wgpu.TextureSampleTypeSint,
	"u32": wgpu.TextureSampleTypeUint,
}

var wgslStorageAccessMap = map[string]wgpu.StorageTextureAccess{
	"write":      wgpu.StorageTextureAccessWriteOnly,
	"read":       wgpu.StorageTextureAccessReadOnly,
	"read_write": wgpu.StorageTextureAccessReadWrite,
}

// storage texel formats the render passes use
var wgslTexelFormatMap = map[string]wgpu.TextureFormat{
	"rgba8unorm":  wgpu.TextureFormatRGBA8Unorm,
	"rgba16float": wgpu.TextureFormatRGBA16Float,
	"rgba32float": wgpu.TextureFormatRGBA32Float,
	"r32float":    wgpu.TextureFormatR32Float,
	"r32uint":     wgpu.TextureFormatR32Uint,
}
