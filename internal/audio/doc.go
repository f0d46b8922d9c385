// Package audio maps vocabulary rows to their pre-generated mp3 files
// and produces missing ones through a text-to-speech provider.
//
// File names follow a fixed convention shared with files generated
// offline, so FileName must stay byte-compatible:
//
//	{index:03}_{german|english|sentence_de|sentence_en}_{token}.mp3
package audio
