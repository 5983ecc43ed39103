// annotations.go defines the annotation types, argument constants, and parser for the
// kanso WGSL shader pre-processor. Annotations are single-line WGSL comments prefixed
// with @kanso: that drive automatic struct injection, bind group declaration, and resource
// provider registration. The parsed results are stored as Annotation values and consumed
// by the PreProcessor and the pass encoders to wire GPU resources without manual
// low-level plumbing.
package shader

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// annotationPrefix is the marker that identifies a kanso annotation within a WGSL comment line.
// Every annotation must appear on a line beginning with "//" followed by this prefix.
const annotationPrefix = "@kanso:"

// AnnotationType identifies the kind of annotation parsed from a WGSL comment line.
// Each type corresponds to a distinct pre-processor action and produces different
// fields on the resulting Annotation struct.
type AnnotationType string

const (
	// annotationTypeInclude injects the WGSL source of a registered struct definition
	// into the shader at the annotation site. The struct source is embedded from the
	// corresponding Go GPU type's .wgsl asset file. This annotation does not produce
	// a declaration and is consumed entirely during pre-processing.
	//
	// Syntax: //@kanso:include <struct_type>
	//
	// Example: //@kanso:include rect2d_instance
	annotationTypeInclude AnnotationType = "include"

	// AnnotationTypeBindingGroup generates a WGSL @group/@binding variable declaration
	// and appends an Annotation to the PreProcessor's declarations list. The declaration
	// carries the group index, binding index, and the resolved struct type, enabling the
	// pass encoders to semantically match bindings to resource providers without string lookups.
	//
	// Syntax: //@kanso:group <group> <binding> <address_space> <var_name> <type>
	//
	// Example: //@kanso:group 0 0 storage_uniform ui_uniform ui_uniform
	AnnotationTypeBindingGroup AnnotationType = "group"

	// AnnotationTypeProvider registers a resource provider identity for a group and binding
	// without generating any WGSL output. The WGSL binding declaration remains hand-written
	// in the shader source directly below the annotation. This is used for bindings that
	// contain raw WGSL types (textures, samplers, flat arrays of primitives) which have no
	// corresponding registered struct in the pre-processor's struct registry.
	//
	// An optional binding role can be appended after the provider identity to declare the
	// semantic purpose of an individual binding within a multi-binding provider group.
	// This allows the loader to resolve binding indices from declarations instead of
	// relying on variable-name string matching.
	//
	// Syntax:
	//   //@kanso:provider <group> <binding> <provider_identity>
	//   //@kanso:provider <group> <binding> <provider_identity> <binding_role>
	//
	// Examples:
	//   //@kanso:provider 1 0 ui_texture color_texture
	//   //@kanso:provider 0 0 ui_global
	AnnotationTypeProvider AnnotationType = "provider"
)

// Annotation represents a single parsed @kanso: annotation from a WGSL shader source line.
// It carries the annotation type, its arguments, the source line number, and optional
// group/binding indices. Annotations of type AnnotationTypeBindingGroup and
// AnnotationTypeProvider are appended to the PreProcessor's declarations list for
// consumption by the pass encoders during resource wiring.
type Annotation struct {
	// Type identifies which annotation was parsed (include, group, or provider).
	Type AnnotationType

	// Args holds the annotation's arguments. The contents depend on Type:
	//   - include:  [0] = struct type key (e.g. "rect2d_instance")
	//   - group:    [0] = address space, [1] = var name, [2] = WGSL type key
	//   - provider: [0] = provider identity (e.g. "ui_texture", "mesh3d_global"), [1] = binding role (optional, e.g. "color_texture")
	Args []AnnotationArg

	// Line is the 1-based line number in the original WGSL source where this annotation
	// was found. Used for error reporting.
	Line int

	// Group is the @group index for group and provider annotations. Nil for include annotations.
	Group *int

	// Binding is the @binding index for group and provider annotations. Nil for include annotations.
	Binding *int
}

// AnnotationArg is a typed string constant used as an argument in annotations.
// Arguments fall into three categories: struct type keys (used with include and group),
// address space identifiers (used with group), and provider identity keys (used with provider).
type AnnotationArg string

// ── Struct type arguments ──────────────────────────────────────────────────────
// These identify registered WGSL struct types. They can appear in @kanso:include annotations
// (to inject the struct source) and in @kanso:group annotations (as the type field, optionally
// wrapped in array<>). Each maps to a Go GPU type with an embedded .wgsl asset file in package passlist.

const (
	// AnnotationArgRect2DInstance identifies the Rect2DInstance struct, the UI pass's
	// per-instance vertex-buffer layout.
	// Source: passlist/assets/rect2d_instance.wgsl
	AnnotationArgRect2DInstance AnnotationArg = "rect2d_instance"

	// AnnotationArgMesh3DInstance identifies the Mesh3DInstance struct, the 3D pass's
	// per-instance model-matrix layout.
	// Source: passlist/assets/mesh3d_instance.wgsl
	AnnotationArgMesh3DInstance AnnotationArg = "mesh3d_instance"

	// AnnotationArgUIUniform identifies the UIUniform struct carrying the UI pass's
	// per-frame viewport size, opacity, and channel-swizzle matrix.
	// Source: passlist/assets/ui_uniform.wgsl
	AnnotationArgUIUniform AnnotationArg = "ui_uniform"

	// AnnotationArgMesh3DUniform identifies the Mesh3DUniform struct carrying the 3D
	// pass's per-frame view and projection matrices.
	// Source: passlist/assets/mesh3d_uniform.wgsl
	AnnotationArgMesh3DUniform AnnotationArg = "mesh3d_uniform"

	// AnnotationArgBlurParams identifies the BlurParams struct carrying the blur pass's
	// target/clip rects, corner radii, and blur radius.
	// Source: passlist/assets/blur_params.wgsl
	AnnotationArgBlurParams AnnotationArg = "blur_params"
)

// ── Address space arguments ────────────────────────────────────────────────────
// These specify the WGSL variable address space in @kanso:group annotations.
// They map to WGSL var<> declarations.

const (
	// annotationArgStorageTypeUniform maps to var<uniform> in WGSL.
	annotationArgStorageTypeUniform AnnotationArg = "storage_uniform"

	// annotationArgStorageTypeRead maps to var<storage, read> in WGSL.
	annotationArgStorageTypeRead AnnotationArg = "storage_read"

	// annotationArgStorageTypeReadWrite maps to var<storage, read_write> in WGSL.
	annotationArgStorageTypeReadWrite AnnotationArg = "storage_read_write"
)

// ── Provider identity arguments ────────────────────────────────────────────────
// These identify which renderer-level resource provider owns a bind group. Used in
// @kanso:provider annotations and matched by the pass encoder's draw-call setup logic
// to build the correct bind group for each group.

const (
	// AnnotationArgUIGlobal identifies the UI pass's per-frame global descriptor
	// (UIUniform) bound once per pass rather than per draw.
	AnnotationArgUIGlobal AnnotationArg = "ui_global"

	// AnnotationArgUITexture identifies the UI pass's per-draw texture+sampler
	// descriptor, rewritten every batch group since the bound texture varies.
	AnnotationArgUITexture AnnotationArg = "ui_texture"

	// AnnotationArgMesh3DGlobal identifies the 3D pass's per-frame global descriptor
	// (Mesh3DUniform: view and projection).
	AnnotationArgMesh3DGlobal AnnotationArg = "mesh3d_global"

	// AnnotationArgMesh3DAlbedo identifies the 3D pass's per-draw albedo texture+sampler
	// descriptor, rewritten every batch group since the bound texture varies.
	AnnotationArgMesh3DAlbedo AnnotationArg = "mesh3d_albedo"

	// AnnotationArgBlurGlobal identifies the blur pass's per-draw descriptor (BlurParams
	// plus the source color attachment being blurred).
	AnnotationArgBlurGlobal AnnotationArg = "blur_global"

	// AnnotationArgBlurSource identifies the blur pass's source texture+sampler binding,
	// separated from blur_global so the source view can be swapped per invocation
	// without rewriting the uniform buffer.
	AnnotationArgBlurSource AnnotationArg = "blur_source"
)

// ── Texture binding role arguments ─────────────────────────────────────────────
// These qualify individual bindings within a texture-bearing provider group. They
// appear as the optional fourth argument of an @kanso:provider annotation, telling
// the loader which texture or sampler role each binding fulfils without relying on
// variable-name string matching.

const (
	// AnnotationArgColorTexture identifies a sampled color texture binding.
	AnnotationArgColorTexture AnnotationArg = "color_texture"

	// AnnotationArgColorSampler identifies the sampler paired with a color texture.
	AnnotationArgColorSampler AnnotationArg = "color_sampler"
)

// validStructTypes lists all AnnotationArg values that are accepted as struct type
// arguments in @kanso:include and @kanso:group annotations. Each entry must have a
// corresponding registryEntry in the PreProcessor's structRegistry.
var validStructTypes = []AnnotationArg{
	AnnotationArgRect2DInstance,
	AnnotationArgMesh3DInstance,
	AnnotationArgUIUniform,
	AnnotationArgMesh3DUniform,
	AnnotationArgBlurParams,
}

// validAddressSpaces lists all AnnotationArg values that are accepted as address
// space arguments in @kanso:group annotations. Each maps to a WGSL var<> declaration.
var validAddressSpaces = []AnnotationArg{
	annotationArgStorageTypeUniform,
	annotationArgStorageTypeRead,
	annotationArgStorageTypeReadWrite,
}

// validProviderIdentities lists all AnnotationArg values that are accepted as
// provider identity arguments in @kanso:provider annotations. Each maps to a
// pass-encoder-level resource provider used during draw call setup wiring.
var validProviderIdentities = []AnnotationArg{
	AnnotationArgUIGlobal,
	AnnotationArgUITexture,
	AnnotationArgMesh3DGlobal,
	AnnotationArgMesh3DAlbedo,
	AnnotationArgBlurGlobal,
	AnnotationArgBlurSource,
}

// validBindingRoles lists all AnnotationArg values that are accepted as binding
// role qualifiers in @kanso:provider annotations. These identify the semantic purpose
// of individual bindings within a texture-bearing provider group.
var validBindingRoles = []AnnotationArg{
	AnnotationArgColorTexture,
	AnnotationArgColorSampler,
}

// parseAnnotation attempts to parse a single line of WGSL source as an @kanso: annotation.
// Returns nil with no error for lines that do not contain the annotation prefix. Returns
// a populated Annotation for valid annotations, or an error describing the problem for
// malformed annotations with correct prefix but invalid syntax or unknown arguments.
//
// Parameters:
//   - line: the raw WGSL source line to parse
//   - lineNum: the 1-based line number for error reporting
//
// Returns:
//   - *Annotation: the parsed annotation, or nil if the line is not an annotation
//   - error: a descriptive error if the annotation is malformed
func parseAnnotation(line string, lineNum int) (*Annotation, error) {
	trimmed := strings.TrimSpace(line)
	_, after, ok := strings.Cut(trimmed, annotationPrefix)
	if !ok {
		return nil, nil
	}

	args := strings.Fields(after)
	if len(args) == 0 {
		return nil, fmt.Errorf("line %d: empty @kanso annotation", lineNum)
	}

	switch args[0] {
	case string(annotationTypeInclude):
		if len(args) != 2 {
			return nil, fmt.Errorf("line %d: @kanso include annotation requires exactly one argument", lineNum)
		}
		if !slices.Contains(validStructTypes, AnnotationArg(args[1])) {
			return nil, fmt.Errorf("line %d: unknown struct type %q in @kanso include annotation", lineNum, args[1])
		}
		return &Annotation{
			Type: annotationTypeInclude,
			Args: []AnnotationArg{AnnotationArg(args[1])},
			Line: lineNum,
		}, nil
	case string(AnnotationTypeBindingGroup):
		if len(args) != 6 {
			return nil, fmt.Errorf("line %d: @kanso group annotation requires exactly five arguments (group number, binding number, address space, variable name, struct type)", lineNum)
		}
		groupInt, err := strconv.Atoi(args[1])
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid group number %q in @kanso group annotation: %v", lineNum, args[1], err)
		}
		bindingInt, err := strconv.Atoi(args[2])
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid binding number %q in @kanso group annotation: %v", lineNum, args[2], err)
		}
		if !slices.Contains(validAddressSpaces, AnnotationArg(args[3])) {
			return nil, fmt.Errorf("line %d: unknown address space %q in @kanso group annotation", lineNum, args[3])
		}
		typeArg := args[5]
		if inner, ok := strings.CutPrefix(typeArg, "array<"); ok {
			inner = strings.TrimSuffix(inner, ">")
			if !slices.Contains(validStructTypes, AnnotationArg(inner)) {
				return nil, fmt.Errorf("line %d: unknown array element type %q in @kanso group annotation", lineNum, inner)
			}
		} else {
			if !slices.Contains(validStructTypes, AnnotationArg(typeArg)) {
				return nil, fmt.Errorf("line %d: unknown struct type %q in @kanso group annotation", lineNum, typeArg)
			}
		}
		return &Annotation{
			Type:    AnnotationTypeBindingGroup,
			Args:    []AnnotationArg{AnnotationArg(args[3]), AnnotationArg(args[4]), AnnotationArg(args[5])},
			Line:    lineNum,
			Group:   &groupInt,
			Binding: &bindingInt,
		}, nil
	case string(AnnotationTypeProvider):
		if len(args) < 4 || len(args) > 5 {
			return nil, fmt.Errorf("line %d: @kanso provider annotation requires three or four arguments (group, binding, provider identity[, binding role])", lineNum)
		}
		groupInt, err := strconv.Atoi(args[1])
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid group number %q: %v", lineNum, args[1], err)
		}
		bindingInt, err := strconv.Atoi(args[2])
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid binding number %q in @kanso provider annotation: %v", lineNum, args[2], err)
		}
		if !slices.Contains(validProviderIdentities, AnnotationArg(args[3])) {
			return nil, fmt.Errorf("line %d: unknown provider identity %q in @kanso provider annotation", lineNum, args[3])
		}
		providerArgs := []AnnotationArg{AnnotationArg(args[3])}
		if len(args) == 5 {
			if !slices.Contains(validBindingRoles, AnnotationArg(args[4])) {
				return nil, fmt.Errorf("line %d: unknown binding role %q in @kanso provider annotation", lineNum, args[4])
			}
			providerArgs = append(providerArgs, AnnotationArg(args[4]))
		}
		return &Annotation{
			Type:    AnnotationTypeProvider,
			Args:    providerArgs,
			Line:    lineNum,
			Group:   &groupInt,
			Binding: &bindingInt,
		}, nil
	default:
		return nil, fmt.Errorf("line %d: unknown @kanso annotation type %q", lineNum, args[0])
	}
}
