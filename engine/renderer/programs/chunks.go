package programs

// Chunks is the base chunk library of the standard family. Materials may
// override any entry by name; new names are rejected.
var Chunks = map[string]string{
	// vertex
	"baseVS": `attribute vec3 vertex_position;
attribute vec3 vertex_normal;
attribute vec2 vertex_texCoord0;
attribute vec2 vertex_texCoord1;
uniform mat4 matrix_model;
uniform mat3 matrix_normal;
varying vec3 vPositionW;
varying vec3 vNormalW;
varying vec2 vUv0;
varying vec2 vUv1;
`,
	"skinVS": `attribute vec4 vertex_boneWeights;
attribute vec4 vertex_boneIndices;
uniform highp sampler2D texture_poseMap;
uniform vec4 texture_poseMapSize;
mat4 getBoneMatrix(const in float i) {
    float j = i * 3.0;
    float dx = texture_poseMapSize.z;
    float v = floor(j * dx);
    vec4 a = texture2D(texture_poseMap, vec2(dx * (j - v * texture_poseMapSize.x) + dx * 0.5, v));
    vec4 b = texture2D(texture_poseMap, vec2(dx * (j + 1.0 - v * texture_poseMapSize.x) + dx * 0.5, v));
    vec4 c = texture2D(texture_poseMap, vec2(dx * (j + 2.0 - v * texture_poseMapSize.x) + dx * 0.5, v));
    return mat4(a.x, b.x, c.x, 0.0, a.y, b.y, c.y, 0.0, a.z, b.z, c.z, 0.0, a.w, b.w, c.w, 1.0);
}
mat4 getModelMatrix() {
    return matrix_model * (getBoneMatrix(vertex_boneIndices.x) * vertex_boneWeights.x +
        getBoneMatrix(vertex_boneIndices.y) * vertex_boneWeights.y +
        getBoneMatrix(vertex_boneIndices.z) * vertex_boneWeights.z +
        getBoneMatrix(vertex_boneIndices.w) * vertex_boneWeights.w);
}
`,
	"instancingVS": `attribute vec4 instance_line1;
attribute vec4 instance_line2;
attribute vec4 instance_line3;
attribute vec4 instance_line4;
mat4 getModelMatrix() {
    return matrix_model * mat4(instance_line1, instance_line2, instance_line3, instance_line4);
}
`,
	"modelVS": `mat4 getModelMatrix() {
    return matrix_model;
}
`,
	"morphVS": `uniform highp sampler2D morphPositionTex;
uniform highp sampler2D morphNormalTex;
uniform vec2 morph_tex_params;
attribute float morph_vertex_id;
vec2 getMorphUv() {
    float id = morph_vertex_id;
    return vec2(mod(id, morph_tex_params.x), floor(id / morph_tex_params.x)) * morph_tex_params.y;
}
`,
	"transformVS": `vec4 getPosition() {
    mat4 model = getModelMatrix();
    vec3 position = vertex_position;
#ifdef MORPHING_POSITION
    position += texture2D(morphPositionTex, getMorphUv()).xyz;
#endif
    vec4 posW = model * vec4(position, 1.0);
    vPositionW = posW.xyz;
    return matrix_viewProjection * posW;
}
`,
	"normalVS": `vec3 getNormal() {
    vec3 normal = vertex_normal;
#ifdef MORPHING_NORMAL
    normal += texture2D(morphNormalTex, getMorphUv()).xyz;
#endif
    return normalize(matrix_normal * normal);
}
`,
	"endVS": `void main(void) {
    gl_Position = getPosition();
    vUv0 = vertex_texCoord0;
    vUv1 = vertex_texCoord1;
#ifdef LIT
    vNormalW = getNormal();
#endif
}
`,

	// fragment
	"basePS": `varying vec3 vPositionW;
varying vec3 vNormalW;
varying vec2 vUv0;
varying vec2 vUv1;
vec3 dAlbedo;
vec3 dNormalW;
vec3 dSpecularity;
float dGlossiness;
float dAlpha;
float dMetalness;
vec3 dEmission;
vec3 dDiffuseLight;
vec3 dSpecularLight;
`,
	"uvTransformPS": `vec2 applyTransform(vec2 uv, vec3 row0, vec3 row1) {
    return vec2(dot(vec3(uv, 1.0), row0), dot(vec3(uv, 1.0), row1));
}
`,
	"diffusePS": `uniform vec3 material_diffuse;
void getAlbedo() {
    dAlbedo = vec3(1.0);
#ifdef DIFFUSE_TINT
    dAlbedo *= material_diffuse;
#endif
#ifdef DIFFUSE_MAP
    dAlbedo *= texture2D(texture_diffuseMap, DIFFUSE_MAP_UV).DIFFUSE_MAP_CHANNEL;
#endif
}
`,
	"opacityPS": `uniform float material_opacity;
void getOpacity() {
    dAlpha = material_opacity;
#ifdef OPACITY_MAP
    dAlpha *= texture2D(texture_opacityMap, OPACITY_MAP_UV).OPACITY_MAP_CHANNEL;
#endif
}
`,
	"alphaTestPS": `uniform float alpha_ref;
void alphaTest(float a) {
    if (a < alpha_ref) discard;
}
`,
	"normalMapPS": `uniform float material_bumpiness;
void getNormal() {
    dNormalW = normalize(vNormalW);
#ifdef NORMAL_MAP
    vec3 normalMap = texture2D(texture_normalMap, NORMAL_MAP_UV).xyz * 2.0 - 1.0;
    dNormalW = normalize(mix(dNormalW, normalMap, material_bumpiness));
#endif
}
`,
	"specularPS": `uniform vec3 material_specular;
void getSpecularity() {
    dSpecularity = vec3(1.0);
#ifdef SPECULAR_TINT
    dSpecularity *= material_specular;
#endif
#ifdef SPECULAR_MAP
    dSpecularity *= texture2D(texture_specularMap, SPECULAR_MAP_UV).SPECULAR_MAP_CHANNEL;
#endif
}
`,
	"metalnessPS": `uniform float material_metalness;
void getMetalness() {
    dMetalness = 1.0;
#ifdef METALNESS_TINT
    dMetalness *= material_metalness;
#endif
#ifdef METALNESS_MAP
    dMetalness *= texture2D(texture_metalnessMap, METALNESS_MAP_UV).METALNESS_MAP_CHANNEL;
#endif
}
`,
	"glossPS": `uniform float material_shininess;
void getGlossiness() {
    dGlossiness = material_shininess;
#ifdef GLOSS_MAP
    dGlossiness *= texture2D(texture_glossMap, GLOSS_MAP_UV).GLOSS_MAP_CHANNEL;
#endif
}
`,
	"emissivePS": `uniform vec3 material_emissive;
uniform float material_emissiveIntensity;
void getEmission() {
    dEmission = vec3(1.0);
#ifdef EMISSIVE_TINT
    dEmission *= material_emissive;
#endif
#ifdef EMISSIVE_MAP
    dEmission *= texture2D(texture_emissiveMap, EMISSIVE_MAP_UV).EMISSIVE_MAP_CHANNEL;
#endif
#ifdef EMISSIVE_INTENSITY
    dEmission *= material_emissiveIntensity;
#endif
}
`,
	"aoPS": `void applyAO() {
#ifdef AO_MAP
    dDiffuseLight *= texture2D(texture_aoMap, AO_MAP_UV).AO_MAP_CHANNEL;
#endif
}
`,
	"clearCoatPS": `uniform float material_clearCoat;
uniform float material_clearCoatGlossiness;
uniform float material_clearCoatReflectivity;
uniform float material_clearCoatBumpiness;
float ccSpecularity;
void getClearCoat() {
    ccSpecularity = material_clearCoat * material_clearCoatReflectivity;
}
`,
	"sheenPS": `uniform vec3 material_sheen;
uniform float material_sheenGloss;
vec3 sSpecularity;
void getSheen() {
    sSpecularity = material_sheen;
}
`,
	"refractionPS": `uniform float material_refraction;
uniform float material_refractionIndex;
void addRefraction() {
    dDiffuseLight = mix(dDiffuseLight, dDiffuseLight * material_refractionIndex, material_refraction);
}
`,
	"lightDirPS": `uniform vec3 light_direction[MAX_DIRECTIONAL_LIGHTS];
uniform vec3 light_color[MAX_DIRECTIONAL_LIGHTS];
void addDirectionalLights() {
    for (int i = 0; i < MAX_DIRECTIONAL_LIGHTS; i++) {
        float nDotL = max(dot(dNormalW, -light_direction[i]), 0.0);
        dDiffuseLight += light_color[i] * nDotL;
    }
}
`,
	"lightLocalPS": `uniform vec3 light_position[MAX_LOCAL_LIGHTS];
uniform vec3 light_localColor[MAX_LOCAL_LIGHTS];
void addLocalLights() {
    for (int i = 0; i < MAX_LOCAL_LIGHTS; i++) {
        vec3 toLight = light_position[i] - vPositionW;
        float falloff = 1.0 / max(dot(toLight, toLight), 0.0001);
        dDiffuseLight += light_localColor[i] * max(dot(dNormalW, normalize(toLight)), 0.0) * falloff;
    }
}
`,
	"clusteredLightPS": `uniform highp sampler2D clusterWorldTexture;
uniform highp sampler2D lightsTexture;
uniform vec3 clusterCellsCountByBoundsSize;
void addClusteredLights() {
    vec3 cell = floor(vPositionW * clusterCellsCountByBoundsSize);
    dDiffuseLight += texture2D(lightsTexture, cell.xy).rgb;
}
`,
	"shadowPS": `uniform highp sampler2D light_shadowMap;
float getShadow(vec4 coord) {
    return step(coord.z, texture2D(light_shadowMap, coord.xy).r);
}
`,
	"reflectionEnvAtlasPS": `uniform sampler2D texture_envAtlas;
uniform float material_reflectivity;
vec3 getReflection(vec3 dir) {
    vec2 uv = vec2(atan(dir.z, dir.x) * 0.1591 + 0.5, asin(dir.y) * 0.3183 + 0.5);
    return decode(texture2D(texture_envAtlas, uv)) * material_reflectivity;
}
`,
	"reflectionCubePS": `uniform samplerCube texture_cubeMap;
uniform float material_reflectivity;
vec3 getReflection(vec3 dir) {
    return decode(textureCube(texture_cubeMap, dir)) * material_reflectivity;
}
`,
	"reflectionSpherePS": `uniform sampler2D texture_sphereMap;
uniform float material_reflectivity;
vec3 getReflection(vec3 dir) {
    vec2 uv = dir.xy * 0.5 + 0.5;
    return decode(texture2D(texture_sphereMap, uv)) * material_reflectivity;
}
`,
	"decodePS": `vec3 decodeLinear(vec4 raw) { return raw.rgb; }
vec3 decodeGamma(vec4 raw) { return pow(raw.rgb, vec3(2.2)); }
vec3 decodeRGBM(vec4 raw) { vec3 c = raw.rgb * raw.a * 8.0; return c * c; }
vec3 decodeRGBE(vec4 raw) { return raw.rgb * pow(2.0, raw.a * 255.0 - 128.0); }
vec3 decodeRGBP(vec4 raw) { return raw.rgb * (-raw.a * 7.0 + 8.0); }
`,
	"fogLinearPS": `uniform vec3 fog_color;
uniform float fog_start;
uniform float fog_end;
vec3 addFog(vec3 color) {
    float depth = gl_FragCoord.z / gl_FragCoord.w;
    float fogFactor = clamp((fog_end - depth) / (fog_end - fog_start), 0.0, 1.0);
    return mix(fog_color, color, fogFactor);
}
`,
	"fogExpPS": `uniform vec3 fog_color;
uniform float fog_density;
vec3 addFog(vec3 color) {
    float depth = gl_FragCoord.z / gl_FragCoord.w;
    float fogFactor = clamp(exp(-depth * fog_density), 0.0, 1.0);
    return mix(fog_color, color, fogFactor);
}
`,
	"fogExp2PS": `uniform vec3 fog_color;
uniform float fog_density;
vec3 addFog(vec3 color) {
    float depth = gl_FragCoord.z / gl_FragCoord.w;
    float fogFactor = clamp(exp(-depth * depth * fog_density * fog_density), 0.0, 1.0);
    return mix(fog_color, color, fogFactor);
}
`,
	"fogNonePS": `vec3 addFog(vec3 color) {
    return color;
}
`,
	"gammaPS": `vec3 gammaCorrectOutput(vec3 color) {
#ifdef GAMMA_CORRECT
    return pow(color + 0.0000001, vec3(1.0 / 2.2));
#else
    return color;
#endif
}
`,
	"tonemappingPS": `uniform float exposure;
vec3 toneMap(vec3 color) {
#if defined(TONEMAP_FILMIC) || defined(TONEMAP_ACES) || defined(TONEMAP_ACES2) || defined(TONEMAP_HEJL) || defined(TONEMAP_NEUTRAL)
    color *= exposure;
    return color / (color + vec3(1.0));
#else
    return color * exposure;
#endif
}
`,
	"endPS": `void main(void) {
    getOpacity();
#ifdef ALPHA_TEST
    alphaTest(dAlpha);
#endif
#ifdef LIT
    getAlbedo();
    getNormal();
    getSpecularity();
    getGlossiness();
    getEmission();
    evaluateLighting();
    vec3 color = dAlbedo * dDiffuseLight + dSpecularLight + dEmission;
    color = addFog(color);
    color = toneMap(color);
    color = gammaCorrectOutput(color);
    gl_FragColor = vec4(color, dAlpha);
#else
    getAlbedo();
    gl_FragColor = vec4(dAlbedo, dAlpha);
#endif
}
`,
	"depthPS": `void main(void) {
    getOpacity();
#ifdef ALPHA_TEST
    alphaTest(dAlpha);
#endif
    gl_FragColor = vec4(gl_FragCoord.z, 0.0, 0.0, 1.0);
}
`,
	"pickPS": `uniform vec4 uColor;
void main(void) {
    getOpacity();
#ifdef ALPHA_TEST
    alphaTest(dAlpha);
#endif
    gl_FragColor = uColor;
}
`,
}
