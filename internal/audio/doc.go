// Package audio plays alarm tones.
//
// A Player loops either a catalog WAV file or a synthesised 880 Hz beep
// until stopped, and a Previewer plays a catalog sound once so the user can
// pick one. Both write PCM through an Output; OtoOutput drives the speakers
// via oto, Silent swallows everything when audio is disabled.
package audio
