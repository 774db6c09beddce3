// Package envstore reads and writes environment variables in the places a
// mirror setting can persist: the current process, the per-user store that
// new shells inherit, and the machine-wide store (read-only).
//
// On Windows the per-user store is the HKCU\Environment registry key and a
// change is announced with a WM_SETTINGCHANGE broadcast. Elsewhere it is a
// YAML file under the config directory that `mirrorkit env` turns into
// shell exports.
package envstore
