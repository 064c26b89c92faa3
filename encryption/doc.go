// Package encryption provides authenticated symmetric encryption for data
// kept on disk, such as a saved session credential.
//
//	enc, err := encryption.New(passphrase, encryption.WithAlgorithm(encryption.AlgorithmChaCha20))
//	sealed, err := enc.Seal(data)
//	data, err = enc.Open(sealed)
package encryption
