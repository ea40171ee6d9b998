package customschema

import "sceneexport/internal/sceneir"

const (
	AudioSourceType     = "UnityEngine.AudioSource"
	AudioGeneratedType  = "UnityAudioSourceMetadataComponent"
	AudioHeaderFileName = "unity_audio_source_metadata_component.hpp"
)

// EnsureAudioStub declares the audio metadata component and, when audio is
// set, returns its instance for the owning entity.
func (u *Unifier) EnsureAudioStub(audio *sceneir.AudioSource) (sceneir.CustomComponent, bool) {
	u.EnsureSchema(sceneir.CustomComponentSchema{
		SourceType:     AudioSourceType,
		GeneratedType:  AudioGeneratedType,
		HeaderFileName: AudioHeaderFileName,
		Fields: []sceneir.CustomFieldSchema{
			{Name: "clipPath", CppType: "std::string", DefaultValueCpp: `""`, SerializedPropertyType: "String"},
			{Name: "volume", CppType: "float", DefaultValueCpp: "1.0f", SerializedPropertyType: "Float"},
			{Name: "pitch", CppType: "float", DefaultValueCpp: "1.0f", SerializedPropertyType: "Float"},
			{Name: "loop", CppType: "bool", DefaultValueCpp: "false", SerializedPropertyType: "Boolean"},
			{Name: "playOnAwake", CppType: "bool", DefaultValueCpp: "true", SerializedPropertyType: "Boolean"},
			{Name: "spatialize", CppType: "bool", DefaultValueCpp: "false", SerializedPropertyType: "Boolean"},
		},
	})
	if audio == nil {
		return sceneir.CustomComponent{}, false
	}
	return sceneir.CustomComponent{
		SourceType:    AudioSourceType,
		GeneratedType: AudioGeneratedType,
		Fields: []sceneir.CustomField{
			sceneir.NewCustomField("clipPath", sceneir.StringValue(audio.ClipPath)),
			sceneir.NewCustomField("volume", sceneir.FloatValue(float32(audio.Volume))),
			sceneir.NewCustomField("pitch", sceneir.FloatValue(float32(audio.Pitch))),
			sceneir.NewCustomField("loop", sceneir.BoolValue(audio.Loop)),
			sceneir.NewCustomField("playOnAwake", sceneir.BoolValue(audio.PlayOnAwake)),
			sceneir.NewCustomField("spatialize", sceneir.BoolValue(audio.Spatialize)),
		},
	}, true
}
