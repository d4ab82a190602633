package engine

// maxPly bounds the search stack: deep enough for the maximum search
// depth plus the maximum quiescence depth, per spec §3's StateStack
// sizing rule.
const maxPly = 128

const maxBonus = 16384
