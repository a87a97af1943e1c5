// Package password provides argon2id password hashing and constant-time
// verification in PHC string format.
//
// Verification decodes the parameters embedded in the stored hash rather
// than the live config, so old hashes keep verifying after a cost-tuning
// change; [Argon2.NeedsUpgrade] detects them for rehash-on-login.
package password
